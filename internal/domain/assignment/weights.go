package assignment

import "math"

// WeightedItem pairs a WBS assignment with its current criteria importance.
// Importance 0 means the WBS item has no criteria yet.
type WeightedItem struct {
	AssignmentID string
	Importance   int
}

// AllocateWeights distributes 100 across the items proportionally to their
// importance, rounded to two decimals. The last item with positive importance
// absorbs the rounding remainder so the total is exactly 100.00. When no item
// has importance the result is all zeros, never NaN.
func AllocateWeights(items []WeightedItem) []float64 {
	weights := make([]float64, len(items))
	total := 0
	lastPositive := -1
	for i, item := range items {
		if item.Importance > 0 {
			total += item.Importance
			lastPositive = i
		}
	}
	if total == 0 {
		return weights
	}

	allocated := 0.0
	for i, item := range items {
		if i == lastPositive {
			continue
		}
		weights[i] = round2(100 * float64(item.Importance) / float64(total))
		allocated += weights[i]
	}
	weights[lastPositive] = round2(100 - allocated)
	return weights
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

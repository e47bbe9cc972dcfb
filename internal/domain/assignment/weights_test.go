package assignment

import (
	"math"
	"testing"
)

func TestAllocateWeightsProportional(t *testing.T) {
	items := []WeightedItem{
		{AssignmentID: "a", Importance: 8},
		{AssignmentID: "b", Importance: 2},
	}

	weights := AllocateWeights(items)
	if weights[0] != 80.00 {
		t.Fatalf("expected 80.00, got %v", weights[0])
	}
	if weights[1] != 20.00 {
		t.Fatalf("expected 20.00, got %v", weights[1])
	}
}

func TestAllocateWeightsSingleItemGetsEverything(t *testing.T) {
	weights := AllocateWeights([]WeightedItem{{AssignmentID: "a", Importance: 3}})
	if weights[0] != 100.00 {
		t.Fatalf("expected 100.00, got %v", weights[0])
	}
}

func TestAllocateWeightsNoImportanceYieldsZeros(t *testing.T) {
	items := []WeightedItem{
		{AssignmentID: "a", Importance: 0},
		{AssignmentID: "b", Importance: 0},
	}
	for i, weight := range AllocateWeights(items) {
		if weight != 0 {
			t.Fatalf("item %d: expected 0, got %v", i, weight)
		}
	}
}

func TestAllocateWeightsEmpty(t *testing.T) {
	if weights := AllocateWeights(nil); len(weights) != 0 {
		t.Fatalf("expected empty result, got %v", weights)
	}
}

func TestAllocateWeightsLastPositiveAbsorbsRemainder(t *testing.T) {
	items := []WeightedItem{
		{AssignmentID: "a", Importance: 1},
		{AssignmentID: "b", Importance: 1},
		{AssignmentID: "c", Importance: 1},
	}

	weights := AllocateWeights(items)
	if weights[0] != 33.33 || weights[1] != 33.33 {
		t.Fatalf("expected 33.33 for the first two, got %v", weights)
	}
	if weights[2] != 33.34 {
		t.Fatalf("expected remainder absorbed into 33.34, got %v", weights[2])
	}
}

func TestAllocateWeightsRemainderSkipsZeroImportanceTail(t *testing.T) {
	items := []WeightedItem{
		{AssignmentID: "a", Importance: 1},
		{AssignmentID: "b", Importance: 2},
		{AssignmentID: "c", Importance: 0},
	}

	weights := AllocateWeights(items)
	if weights[2] != 0 {
		t.Fatalf("zero-importance item must stay 0, got %v", weights[2])
	}
	if weights[0] != 33.33 {
		t.Fatalf("expected 33.33, got %v", weights[0])
	}
	// b is the last positive item, so it takes the remainder.
	if weights[1] != 66.67 {
		t.Fatalf("expected 66.67, got %v", weights[1])
	}
}

func TestAllocateWeightsSumIsExactlyOneHundred(t *testing.T) {
	cases := [][]WeightedItem{
		{{AssignmentID: "a", Importance: 1}, {AssignmentID: "b", Importance: 1}, {AssignmentID: "c", Importance: 1}},
		{{AssignmentID: "a", Importance: 3}, {AssignmentID: "b", Importance: 7}},
		{{AssignmentID: "a", Importance: 1}, {AssignmentID: "b", Importance: 2}, {AssignmentID: "c", Importance: 4}, {AssignmentID: "d", Importance: 6}},
		{{AssignmentID: "a", Importance: 9}, {AssignmentID: "b", Importance: 0}, {AssignmentID: "c", Importance: 5}},
		{{AssignmentID: "a", Importance: 1}, {AssignmentID: "b", Importance: 1}, {AssignmentID: "c", Importance: 1}, {AssignmentID: "d", Importance: 1}, {AssignmentID: "e", Importance: 1}, {AssignmentID: "f", Importance: 1}, {AssignmentID: "g", Importance: 1}},
	}

	for i, items := range cases {
		sum := 0.0
		for _, weight := range AllocateWeights(items) {
			sum += weight
		}
		if math.Abs(sum-100.0) > 1e-9 {
			t.Fatalf("case %d: expected sum 100, got %v", i, sum)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := round2(33.333333); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := round2(66.666667); got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}
}

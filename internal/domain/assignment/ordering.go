package assignment

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case DirectionUp, DirectionDown:
		return Direction(value), nil
	default:
		return "", validationErrorf(RuleInvalidDirection, "direction must be up or down, got %q", value)
	}
}

type orderedRow struct {
	ID           string
	DisplayOrder int
}

// planSwap picks the sibling to exchange display orders with. rows must be
// sorted by DisplayOrder ascending. ok is false for a boundary no-op: the
// first row moving up or the last row moving down keeps its position.
func planSwap(rows []orderedRow, id string, direction Direction) (current, neighbor orderedRow, ok bool) {
	index := -1
	for i, row := range rows {
		if row.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return orderedRow{}, orderedRow{}, false
	}

	switch direction {
	case DirectionUp:
		if index == 0 {
			return rows[index], orderedRow{}, false
		}
		return rows[index], rows[index-1], true
	case DirectionDown:
		if index == len(rows)-1 {
			return rows[index], orderedRow{}, false
		}
		return rows[index], rows[index+1], true
	}
	return orderedRow{}, orderedRow{}, false
}

package assignment

import "testing"

func orderedFixture() []orderedRow {
	return []orderedRow{
		{ID: "a", DisplayOrder: 0},
		{ID: "b", DisplayOrder: 1},
		{ID: "c", DisplayOrder: 2},
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("up"); err != nil {
		t.Fatalf("expected up to parse, got %v", err)
	}
	if _, err := ParseDirection("down"); err != nil {
		t.Fatalf("expected down to parse, got %v", err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected rejection for unknown direction")
	}
}

func TestPlanSwapMiddleUp(t *testing.T) {
	current, neighbor, ok := planSwap(orderedFixture(), "b", DirectionUp)
	if !ok {
		t.Fatal("expected a swap")
	}
	if current.ID != "b" || neighbor.ID != "a" {
		t.Fatalf("expected b<->a, got %s<->%s", current.ID, neighbor.ID)
	}
}

func TestPlanSwapMiddleDown(t *testing.T) {
	current, neighbor, ok := planSwap(orderedFixture(), "b", DirectionDown)
	if !ok {
		t.Fatal("expected a swap")
	}
	if current.ID != "b" || neighbor.ID != "c" {
		t.Fatalf("expected b<->c, got %s<->%s", current.ID, neighbor.ID)
	}
}

func TestPlanSwapBoundaryIsNoOp(t *testing.T) {
	if _, _, ok := planSwap(orderedFixture(), "a", DirectionUp); ok {
		t.Fatal("first row moving up must be a no-op")
	}
	if _, _, ok := planSwap(orderedFixture(), "c", DirectionDown); ok {
		t.Fatal("last row moving down must be a no-op")
	}
}

func TestPlanSwapUnknownID(t *testing.T) {
	if _, _, ok := planSwap(orderedFixture(), "zzz", DirectionUp); ok {
		t.Fatal("unknown id must not swap")
	}
}

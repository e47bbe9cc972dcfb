package evalline

import (
	"errors"
	"testing"
)

func TestRunBulkIsolatesFailures(t *testing.T) {
	items := []BulkItem{
		{EmployeeID: "e1", EvaluatorID: "m1"},
		{EmployeeID: "e2", EvaluatorID: "m2"},
		{EmployeeID: "e3", EvaluatorID: "m3"},
	}

	result := runBulk(items, func(item BulkItem) (string, error) {
		if item.EmployeeID == "e2" {
			return "", errors.New("configure failed")
		}
		return "mapping-" + item.EmployeeID, nil
	})

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Fatalf("expected 2/1, got %d/%d", result.SuccessCount, result.FailureCount)
	}
	if result.Items[0].MappingID != "mapping-e1" || result.Items[0].Status != BulkItemSuccess {
		t.Fatalf("unexpected first item: %+v", result.Items[0])
	}
	if result.Items[1].Status != BulkItemError || result.Items[1].Error == "" {
		t.Fatalf("expected middle item to fail, got %+v", result.Items[1])
	}
	if result.Items[2].Index != 2 || result.Items[2].MappingID != "mapping-e3" {
		t.Fatalf("unexpected last item: %+v", result.Items[2])
	}
}

func TestRunBulkEmpty(t *testing.T) {
	result := runBulk(nil, func(BulkItem) (string, error) { return "", nil })
	if result.SuccessCount != 0 || result.FailureCount != 0 || len(result.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestDefaultLine(t *testing.T) {
	primary := defaultLine(EvaluatorTypePrimary)
	if primary.EvalOrder != 1 || !primary.IsRequired || !primary.IsAutoAssigned {
		t.Fatalf("unexpected primary line: %+v", primary)
	}

	secondary := defaultLine(EvaluatorTypeSecondary)
	if secondary.EvalOrder != 2 || secondary.IsRequired || secondary.IsAutoAssigned {
		t.Fatalf("unexpected secondary line: %+v", secondary)
	}

	additional := defaultLine(EvaluatorTypeAdditional)
	if additional.EvalOrder != 3 || additional.IsRequired {
		t.Fatalf("unexpected additional line: %+v", additional)
	}
}

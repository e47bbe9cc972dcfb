package evalline

// runBulk processes each item independently: one item's failure never rolls
// back another's success. Results keep the input order.
func runBulk(items []BulkItem, run func(BulkItem) (string, error)) BulkResult {
	result := BulkResult{Items: make([]BulkItemResult, 0, len(items))}
	for i, item := range items {
		mappingID, err := run(item)
		if err != nil {
			result.FailureCount++
			result.Items = append(result.Items, BulkItemResult{Index: i, Status: BulkItemError, Error: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Items = append(result.Items, BulkItemResult{Index: i, Status: BulkItemSuccess, MappingID: mappingID})
	}
	return result
}

// defaultLine returns the reference row to create when a role slot is first
// needed.
func defaultLine(evaluatorType string) EvaluationLine {
	switch evaluatorType {
	case EvaluatorTypePrimary:
		return EvaluationLine{EvaluatorType: evaluatorType, EvalOrder: 1, IsRequired: true, IsAutoAssigned: true}
	case EvaluatorTypeSecondary:
		return EvaluationLine{EvaluatorType: evaluatorType, EvalOrder: 2, IsRequired: false, IsAutoAssigned: false}
	default:
		return EvaluationLine{EvaluatorType: evaluatorType, EvalOrder: 3, IsRequired: false, IsAutoAssigned: false}
	}
}

package evalline

import "time"

const (
	EvaluatorTypePrimary    = "primary"
	EvaluatorTypeSecondary  = "secondary"
	EvaluatorTypeAdditional = "additional"
)

// EvaluationLine is a role slot in the evaluation workflow. The set is small
// reference data, created on demand and reused.
type EvaluationLine struct {
	ID             string `json:"id"`
	EvaluatorType  string `json:"evaluatorType"`
	EvalOrder      int    `json:"order"`
	IsRequired     bool   `json:"isRequired"`
	IsAutoAssigned bool   `json:"isAutoAssigned"`
}

// Mapping binds a concrete evaluator to an employee for a role. WbsItemID is
// nil for a primary (whole-employee) binding and set for a secondary
// (per-WBS) binding.
type Mapping struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	EvaluatorID      string    `json:"evaluatorId"`
	WbsItemID        *string   `json:"wbsItemId"`
	EvaluationLineID string    `json:"evaluationLineId"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ConfigureResult reports what a configuration call actually created, so
// idempotent re-invocation is observable (0 created on the second call).
type ConfigureResult struct {
	MappingID       string `json:"mappingId"`
	CreatedLines    int    `json:"createdLines"`
	CreatedMappings int    `json:"createdMappings"`
}

type AutoConfigureResult struct {
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	Warnings     []string `json:"warnings"`
}

type BulkItem struct {
	EmployeeID  string `json:"employeeId"`
	WbsItemID   string `json:"wbsItemId,omitempty"`
	EvaluatorID string `json:"evaluatorId"`
}

const (
	BulkItemSuccess = "success"
	BulkItemError   = "error"
)

type BulkItemResult struct {
	Index     int    `json:"index"`
	Status    string `json:"status"`
	MappingID string `json:"mappingId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BulkResult struct {
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Items        []BulkItemResult `json:"items"`
}

package assignment

import "time"

type ProjectAssignment struct {
	ID           string    `json:"id"`
	PeriodID     string    `json:"periodId"`
	EmployeeID   string    `json:"employeeId"`
	ProjectID    string    `json:"projectId"`
	AssignedBy   string    `json:"assignedBy"`
	AssignedDate time.Time `json:"assignedDate"`
	DisplayOrder int       `json:"displayOrder"`
}

type WbsAssignment struct {
	ID           string    `json:"id"`
	PeriodID     string    `json:"periodId"`
	EmployeeID   string    `json:"employeeId"`
	ProjectID    string    `json:"projectId"`
	WbsItemID    string    `json:"wbsItemId"`
	AssignedBy   string    `json:"assignedBy"`
	AssignedDate time.Time `json:"assignedDate"`
	DisplayOrder int       `json:"displayOrder"`
	Weight       float64   `json:"weight"`
}

// WbsEvaluationCriteria is the single current criteria row for a WBS item.
// Upserts update the oldest existing row instead of inserting a second one.
type WbsEvaluationCriteria struct {
	ID         string    `json:"id"`
	WbsItemID  string    `json:"wbsItemId"`
	Criteria   string    `json:"criteria"`
	Importance int       `json:"importance"`
	UpdatedBy  string    `json:"updatedBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ProjectAssignmentInput struct {
	PeriodID   string `json:"periodId"`
	EmployeeID string `json:"employeeId"`
	ProjectID  string `json:"projectId"`
}

type WbsAssignmentInput struct {
	PeriodID   string `json:"periodId"`
	EmployeeID string `json:"employeeId"`
	ProjectID  string `json:"projectId"`
	WbsItemID  string `json:"wbsItemId"`
}

// Scope narrows a cascade to one period, project, or employee.
// The zero value matches everything (full wipe).
type Scope struct {
	PeriodID   string `json:"periodId,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (s Scope) IsFullWipe() bool {
	return s.PeriodID == "" && s.ProjectID == "" && s.EmployeeID == ""
}

const (
	BulkItemSuccess = "success"
	BulkItemError   = "error"
)

type BulkItemResult struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type BulkResult struct {
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Items        []BulkItemResult `json:"items"`
}

func (r *BulkResult) add(index int, id string, err error) {
	if err != nil {
		r.FailureCount++
		r.Items = append(r.Items, BulkItemResult{Index: index, Status: BulkItemError, Error: err.Error()})
		return
	}
	r.SuccessCount++
	r.Items = append(r.Items, BulkItemResult{Index: index, Status: BulkItemSuccess, ID: id})
}

// CascadeResult reports rows removed (or unmapped) per cascade step.
type CascadeResult struct {
	Deleted map[string]int64 `json:"deleted"`
}

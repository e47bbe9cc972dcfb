package org

import "time"

const (
	PeriodStatusDraft      = "draft"
	PeriodStatusInProgress = "in_progress"
	PeriodStatusClosed     = "closed"

	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// EvaluationPeriod is owned by the external period-management collaborator;
// the engine only cares about identity and whether mutation is still allowed.
type EvaluationPeriod struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Status          string    `json:"status"`
	SelfEvalEnabled bool      `json:"selfEvalEnabled"`
	PeerEvalEnabled bool      `json:"peerEvalEnabled"`
}

func (p EvaluationPeriod) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

type Employee struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	ManagerID *string `json:"managerId"`
	Status    string  `json:"status"`
}

func (e Employee) Active() bool {
	return e.Status == EmployeeStatusActive
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type WbsItem struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	ParentID  *string `json:"parentId"`
	Level     int     `json:"level"`
	Name      string  `json:"name"`
}

// Enrollment is one employee's membership in an evaluation period.
type Enrollment struct {
	EmployeeID string `json:"employeeId"`
	Excluded   bool   `json:"excluded"`
}

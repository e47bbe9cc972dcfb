package assignment

import "fmt"

// Rule identifies the business rule a rejected mutation violated.
type Rule string

const (
	RulePeriodNotFound        Rule = "period_not_found"
	RulePeriodClosed          Rule = "period_closed"
	RuleEmployeeNotFound      Rule = "employee_not_found"
	RuleEmployeeInactive      Rule = "employee_inactive"
	RuleProjectNotFound       Rule = "project_not_found"
	RuleWbsItemNotFound       Rule = "wbs_item_not_found"
	RuleWbsItemOutsideProject Rule = "wbs_item_outside_project"
	RuleProjectNotAssigned    Rule = "project_not_assigned"
	RuleDuplicateAssignment   Rule = "duplicate_assignment"
	RuleWbsAssignmentsRemain  Rule = "wbs_assignments_remain"
	RuleImportanceOutOfRange  Rule = "importance_out_of_range"
	RuleInvalidDirection      Rule = "invalid_direction"
)

// ValidationError is raised before any write; it is never partially applied.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(rule Rule, format string, args ...any) error {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent assignment or criteria row on a
// non-idempotent lookup. Cancel paths treat absence as a no-op instead.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

package evalline

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEvaluatorNotFound = errors.New("evaluator not found")
	ErrWbsItemNotFound   = errors.New("wbs item not found")
	ErrPeriodNotFound    = errors.New("evaluation period not found")
	ErrPeriodClosed      = errors.New("evaluation period is closed")
	ErrNoManager         = errors.New("employee has no manager")
	ErrLineNotFound      = errors.New("evaluation line role not found")

	// ErrNoEvaluationPermission is an authorization failure, not a data bug:
	// a missing mapping means the evaluator may not evaluate this target.
	ErrNoEvaluationPermission = errors.New("no evaluation permission for this wbs")
)

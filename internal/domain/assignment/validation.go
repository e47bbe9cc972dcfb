package assignment

import "pms/internal/domain/org"

// Fact snapshots decouple rule evaluation from data access: the service loads
// the referenced rows, the rule functions below decide. Checks run in a fixed
// order and stop at the first violated rule.

type ProjectCreationFacts struct {
	Period          org.EvaluationPeriod
	PeriodFound     bool
	Employee        org.Employee
	EmployeeFound   bool
	ProjectFound    bool
	DuplicateExists bool
	Input           ProjectAssignmentInput
}

type WbsCreationFacts struct {
	Period          org.EvaluationPeriod
	PeriodFound     bool
	Employee        org.Employee
	EmployeeFound   bool
	ProjectFound    bool
	WbsItem         org.WbsItem
	WbsItemFound    bool
	ProjectAssigned bool
	DuplicateExists bool
	Input           WbsAssignmentInput
}

type DeletionFacts struct {
	Period      org.EvaluationPeriod
	PeriodFound bool
}

func ValidateProjectAssignmentCreation(f ProjectCreationFacts) error {
	if err := checkPeriodOpen(f.Period, f.PeriodFound, f.Input.PeriodID); err != nil {
		return err
	}
	if err := checkEmployeeActive(f.Employee, f.EmployeeFound, f.Input.EmployeeID); err != nil {
		return err
	}
	if !f.ProjectFound {
		return validationErrorf(RuleProjectNotFound, "project %s not found", f.Input.ProjectID)
	}
	if f.DuplicateExists {
		return validationErrorf(RuleDuplicateAssignment,
			"project %s already assigned to employee %s in period %s",
			f.Input.ProjectID, f.Input.EmployeeID, f.Input.PeriodID)
	}
	return nil
}

func ValidateWbsAssignmentCreation(f WbsCreationFacts) error {
	if err := checkPeriodOpen(f.Period, f.PeriodFound, f.Input.PeriodID); err != nil {
		return err
	}
	if err := checkEmployeeActive(f.Employee, f.EmployeeFound, f.Input.EmployeeID); err != nil {
		return err
	}
	if !f.ProjectFound {
		return validationErrorf(RuleProjectNotFound, "project %s not found", f.Input.ProjectID)
	}
	if !f.WbsItemFound {
		return validationErrorf(RuleWbsItemNotFound, "wbs item %s not found", f.Input.WbsItemID)
	}
	if f.WbsItem.ProjectID != f.Input.ProjectID {
		return validationErrorf(RuleWbsItemOutsideProject,
			"wbs item %s does not belong to project %s", f.Input.WbsItemID, f.Input.ProjectID)
	}
	if !f.ProjectAssigned {
		return validationErrorf(RuleProjectNotAssigned,
			"project %s not assigned to employee %s in period %s",
			f.Input.ProjectID, f.Input.EmployeeID, f.Input.PeriodID)
	}
	if f.DuplicateExists {
		return validationErrorf(RuleDuplicateAssignment,
			"wbs item %s already assigned to employee %s in period %s",
			f.Input.WbsItemID, f.Input.EmployeeID, f.Input.PeriodID)
	}
	return nil
}

// ValidateAssignmentDeletion rejects removal once the evaluation period is
// closed, so submitted evaluations stay stable.
func ValidateAssignmentDeletion(f DeletionFacts, periodID string) error {
	return checkPeriodOpen(f.Period, f.PeriodFound, periodID)
}

func checkPeriodOpen(period org.EvaluationPeriod, found bool, periodID string) error {
	if !found {
		return validationErrorf(RulePeriodNotFound, "evaluation period %s not found", periodID)
	}
	if period.IsClosed() {
		return validationErrorf(RulePeriodClosed, "evaluation period %s is closed", periodID)
	}
	return nil
}

func checkEmployeeActive(employee org.Employee, found bool, employeeID string) error {
	if !found {
		return validationErrorf(RuleEmployeeNotFound, "employee %s not found", employeeID)
	}
	if !employee.Active() {
		return validationErrorf(RuleEmployeeInactive, "employee %s is not active", employeeID)
	}
	return nil
}

package assignment

import (
	"errors"
	"testing"

	"pms/internal/domain/org"
)

func validWbsFacts() WbsCreationFacts {
	return WbsCreationFacts{
		Period:          org.EvaluationPeriod{ID: "p1", Status: org.PeriodStatusInProgress},
		PeriodFound:     true,
		Employee:        org.Employee{ID: "e1", Status: org.EmployeeStatusActive},
		EmployeeFound:   true,
		ProjectFound:    true,
		WbsItem:         org.WbsItem{ID: "w1", ProjectID: "pr1"},
		WbsItemFound:    true,
		ProjectAssigned: true,
		Input:           WbsAssignmentInput{PeriodID: "p1", EmployeeID: "e1", ProjectID: "pr1", WbsItemID: "w1"},
	}
}

func ruleOf(t *testing.T, err error) Rule {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return validationErr.Rule
}

func TestValidateWbsAssignmentCreationAccepts(t *testing.T) {
	if err := ValidateWbsAssignmentCreation(validWbsFacts()); err != nil {
		t.Fatalf("expected valid facts to pass, got %v", err)
	}
}

func TestValidateWbsAssignmentCreationRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*WbsCreationFacts)
		expect Rule
	}{
		{"period missing", func(f *WbsCreationFacts) { f.PeriodFound = false }, RulePeriodNotFound},
		{"period closed", func(f *WbsCreationFacts) { f.Period.Status = org.PeriodStatusClosed }, RulePeriodClosed},
		{"employee missing", func(f *WbsCreationFacts) { f.EmployeeFound = false }, RuleEmployeeNotFound},
		{"employee inactive", func(f *WbsCreationFacts) { f.Employee.Status = org.EmployeeStatusInactive }, RuleEmployeeInactive},
		{"project missing", func(f *WbsCreationFacts) { f.ProjectFound = false }, RuleProjectNotFound},
		{"wbs item missing", func(f *WbsCreationFacts) { f.WbsItemFound = false }, RuleWbsItemNotFound},
		{"wbs item outside project", func(f *WbsCreationFacts) { f.WbsItem.ProjectID = "other" }, RuleWbsItemOutsideProject},
		{"project not assigned", func(f *WbsCreationFacts) { f.ProjectAssigned = false }, RuleProjectNotAssigned},
		{"duplicate", func(f *WbsCreationFacts) { f.DuplicateExists = true }, RuleDuplicateAssignment},
	}

	for _, tc := range cases {
		facts := validWbsFacts()
		tc.mutate(&facts)
		err := ValidateWbsAssignmentCreation(facts)
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if rule := ruleOf(t, err); rule != tc.expect {
			t.Fatalf("%s: expected rule %s, got %s", tc.name, tc.expect, rule)
		}
	}
}

// The first violated rule wins: a closed period is reported even when the
// input is also a duplicate.
func TestValidateWbsAssignmentCreationShortCircuits(t *testing.T) {
	facts := validWbsFacts()
	facts.Period.Status = org.PeriodStatusClosed
	facts.DuplicateExists = true

	if rule := ruleOf(t, ValidateWbsAssignmentCreation(facts)); rule != RulePeriodClosed {
		t.Fatalf("expected period_closed to win, got %s", rule)
	}
}

func TestValidateProjectAssignmentCreation(t *testing.T) {
	facts := ProjectCreationFacts{
		Period:        org.EvaluationPeriod{ID: "p1", Status: org.PeriodStatusInProgress},
		PeriodFound:   true,
		Employee:      org.Employee{ID: "e1", Status: org.EmployeeStatusActive},
		EmployeeFound: true,
		ProjectFound:  true,
		Input:         ProjectAssignmentInput{PeriodID: "p1", EmployeeID: "e1", ProjectID: "pr1"},
	}
	if err := ValidateProjectAssignmentCreation(facts); err != nil {
		t.Fatalf("expected valid facts to pass, got %v", err)
	}

	facts.DuplicateExists = true
	if rule := ruleOf(t, ValidateProjectAssignmentCreation(facts)); rule != RuleDuplicateAssignment {
		t.Fatalf("expected duplicate_assignment, got %s", rule)
	}
}

func TestValidateAssignmentDeletion(t *testing.T) {
	open := DeletionFacts{Period: org.EvaluationPeriod{ID: "p1", Status: org.PeriodStatusInProgress}, PeriodFound: true}
	if err := ValidateAssignmentDeletion(open, "p1"); err != nil {
		t.Fatalf("expected open period to allow deletion, got %v", err)
	}

	closed := DeletionFacts{Period: org.EvaluationPeriod{ID: "p1", Status: org.PeriodStatusClosed}, PeriodFound: true}
	if rule := ruleOf(t, ValidateAssignmentDeletion(closed, "p1")); rule != RulePeriodClosed {
		t.Fatalf("expected period_closed, got %s", rule)
	}

	missing := DeletionFacts{}
	if rule := ruleOf(t, ValidateAssignmentDeletion(missing, "p1")); rule != RulePeriodNotFound {
		t.Fatalf("expected period_not_found, got %s", rule)
	}
}

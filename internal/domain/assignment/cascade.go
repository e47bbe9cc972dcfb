package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"pms/internal/domain/org"
)

// DownstreamAPI is the cascade's view of the evaluation and deliverable
// stores. Contents are never inspected, only removed or unmapped by filter.
type DownstreamAPI interface {
	DeletePeerEvaluationQuestionMappingsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	DeletePeerEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	DeleteDownwardEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	DeleteSelfEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	UnmapDeliverablesTx(ctx context.Context, tx pgx.Tx, employeeID, wbsItemID string) (int64, error)
}

// LineMappingAPI is the cascade's view of evaluation-line mappings.
type LineMappingAPI interface {
	DeleteAllMappingsTx(ctx context.Context, tx pgx.Tx) (int64, error)
	DeleteMappingsByEmployeesTx(ctx context.Context, tx pgx.Tx, employeeIDs []string) (int64, error)
	DeleteSecondaryMappingsByProjectTx(ctx context.Context, tx pgx.Tx, projectID string) (int64, error)
}

// CascadeStoreAPI is the cascade's view of its own assignment store: scoped
// enumeration, scoped deletion and display-order compaction.
type CascadeStoreAPI interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	ListWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]WbsAssignment, error)
	ListProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]ProjectAssignment, error)
	DeleteWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	DeleteProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error)
	RenumberProjectOrdersTx(ctx context.Context, tx pgx.Tx, periodID, employeeID string) error
}

// CascadeStep is one entity type in the dependency-ordered teardown. Each
// step exhausts its entity type before the next begins.
type CascadeStep struct {
	Name string
	Run  func(ctx context.Context, tx pgx.Tx) (int64, error)
}

const (
	stepPeerQuestionMappings = "peer_evaluation_question_mappings"
	stepPeerEvaluations      = "peer_evaluations"
	stepDownwardEvaluations  = "downward_evaluations"
	stepSelfEvaluations      = "self_evaluations"
	stepDeliverablesUnmapped = "deliverables_unmapped"
	stepWbsAssignments       = "wbs_assignments"
	stepLineMappings         = "evaluation_line_mappings"
	stepProjectAssignments   = "project_assignments"
)

// cascadePlan declares the teardown order once. Child entities go first so no
// step ever orphans rows a later step still references.
func (s *Service) cascadePlan(scope Scope, skipValidation bool, wbsRows []WbsAssignment, projRows []ProjectAssignment) []CascadeStep {
	return []CascadeStep{
		{Name: stepPeerQuestionMappings, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			return s.downstream.DeletePeerEvaluationQuestionMappingsTx(ctx, tx, scope)
		}},
		{Name: stepPeerEvaluations, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			return s.downstream.DeletePeerEvaluationsTx(ctx, tx, scope)
		}},
		{Name: stepDownwardEvaluations, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			return s.downstream.DeleteDownwardEvaluationsTx(ctx, tx, scope)
		}},
		{Name: stepSelfEvaluations, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			return s.downstream.DeleteSelfEvaluationsTx(ctx, tx, scope)
		}},
		{Name: stepDeliverablesUnmapped, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			var total int64
			for _, row := range wbsRows {
				unmapped, err := s.downstream.UnmapDeliverablesTx(ctx, tx, row.EmployeeID, row.WbsItemID)
				if err != nil {
					return 0, err
				}
				total += unmapped
			}
			return total, nil
		}},
		{Name: stepWbsAssignments, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			if !skipValidation {
				if err := s.validateScopedDeletions(ctx, wbsPeriodIDs(wbsRows)); err != nil {
					return 0, err
				}
			}
			return s.cascades.DeleteWbsAssignmentsScopeTx(ctx, tx, scope)
		}},
		{Name: stepLineMappings, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			return s.deleteLineMappings(ctx, tx, scope, projRows)
		}},
		{Name: stepProjectAssignments, Run: func(ctx context.Context, tx pgx.Tx) (int64, error) {
			if !skipValidation {
				if err := s.validateScopedDeletions(ctx, projectPeriodIDs(projRows)); err != nil {
					return 0, err
				}
			}
			deleted, err := s.cascades.DeleteProjectAssignmentsScopeTx(ctx, tx, scope)
			if err != nil {
				return 0, err
			}
			// A project assignment's ordering scope spans projects, so a
			// project-scoped reset leaves holes in scopes that keep other
			// projects' rows. Compact each touched scope back to 0..n-1;
			// period and employee scopes delete their scopes whole.
			if scope.ProjectID != "" {
				for _, pair := range distinctProjectPairs(projRows) {
					if err := s.cascades.RenumberProjectOrdersTx(ctx, tx, pair.PeriodID, pair.EmployeeID); err != nil {
						return 0, err
					}
				}
			}
			return deleted, nil
		}},
	}
}

// runCascade executes the full teardown plan in one transaction. Any step
// failure, including a deletion-validation rejection, rolls everything back.
func (s *Service) runCascade(ctx context.Context, scope Scope, skipValidation bool) (CascadeResult, error) {
	tx, err := s.cascades.Begin(ctx)
	if err != nil {
		return CascadeResult{}, err
	}
	defer tx.Rollback(ctx)

	wbsRows, err := s.cascades.ListWbsAssignmentsScopeTx(ctx, tx, scope)
	if err != nil {
		return CascadeResult{}, err
	}
	projRows, err := s.cascades.ListProjectAssignmentsScopeTx(ctx, tx, scope)
	if err != nil {
		return CascadeResult{}, err
	}

	steps := s.cascadePlan(scope, skipValidation, wbsRows, projRows)
	result := CascadeResult{Deleted: make(map[string]int64, len(steps))}
	for _, step := range steps {
		affected, err := step.Run(ctx, tx)
		if err != nil {
			return CascadeResult{}, fmt.Errorf("cascade step %s: %w", step.Name, err)
		}
		result.Deleted[step.Name] = affected
	}

	if !scope.IsFullWipe() {
		for _, pair := range distinctPairs(wbsRows) {
			if err := s.recalculateWeightsTx(ctx, tx, pair.EmployeeID, pair.PeriodID); err != nil {
				slog.Warn("weight recalculation after cascade failed",
					"employeeId", pair.EmployeeID, "periodId", pair.PeriodID, "err", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return CascadeResult{}, err
	}
	return result, nil
}

// validateScopedDeletions re-runs deletion validation for every period the
// subset touches; one closed period aborts the whole cascade.
func (s *Service) validateScopedDeletions(ctx context.Context, periodIDs []string) error {
	checked := make(map[string]bool, len(periodIDs))
	for _, periodID := range periodIDs {
		if checked[periodID] {
			continue
		}
		checked[periodID] = true
		facts, err := s.deletionFacts(ctx, periodID)
		if err != nil {
			return err
		}
		if err := ValidateAssignmentDeletion(facts, periodID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) deleteLineMappings(ctx context.Context, tx pgx.Tx, scope Scope, projRows []ProjectAssignment) (int64, error) {
	switch {
	case scope.IsFullWipe():
		return s.lines.DeleteAllMappingsTx(ctx, tx)
	case scope.EmployeeID != "":
		return s.lines.DeleteMappingsByEmployeesTx(ctx, tx, []string{scope.EmployeeID})
	case scope.ProjectID != "":
		return s.lines.DeleteSecondaryMappingsByProjectTx(ctx, tx, scope.ProjectID)
	default:
		employees := distinctEmployees(projRows)
		if len(employees) == 0 {
			return 0, nil
		}
		return s.lines.DeleteMappingsByEmployeesTx(ctx, tx, employees)
	}
}

// deletionFacts reads the period through the pool, outside the caller's
// transaction. Master data is owned by an external collaborator and no
// cascade step writes it, so a transactional view would not change the
// outcome.
func (s *Service) deletionFacts(ctx context.Context, periodID string) (DeletionFacts, error) {
	period, err := s.org.GetPeriod(ctx, periodID)
	if err == nil {
		return DeletionFacts{Period: period, PeriodFound: true}, nil
	}
	if errors.Is(err, org.ErrPeriodNotFound) {
		return DeletionFacts{}, nil
	}
	return DeletionFacts{}, err
}

func wbsPeriodIDs(rows []WbsAssignment) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.PeriodID)
	}
	return out
}

func projectPeriodIDs(rows []ProjectAssignment) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.PeriodID)
	}
	return out
}

func distinctPairs(rows []WbsAssignment) []EmployeePeriod {
	seen := make(map[EmployeePeriod]bool, len(rows))
	var pairs []EmployeePeriod
	for _, row := range rows {
		pair := EmployeePeriod{EmployeeID: row.EmployeeID, PeriodID: row.PeriodID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

// distinctProjectPairs lists every (employee, period) ordering scope the
// deleted project assignments belonged to, first-seen order.
func distinctProjectPairs(rows []ProjectAssignment) []EmployeePeriod {
	seen := make(map[EmployeePeriod]bool, len(rows))
	var pairs []EmployeePeriod
	for _, row := range rows {
		pair := EmployeePeriod{EmployeeID: row.EmployeeID, PeriodID: row.PeriodID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

func distinctEmployees(rows []ProjectAssignment) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		if seen[row.EmployeeID] {
			continue
		}
		seen[row.EmployeeID] = true
		out = append(out, row.EmployeeID)
	}
	return out
}

package assignment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"pms/internal/domain/org"
)

// orgAPI is the facade's read-only view of externally owned master data.
type orgAPI interface {
	GetPeriod(ctx context.Context, periodID string) (org.EvaluationPeriod, error)
	GetEmployee(ctx context.Context, employeeID string) (org.Employee, error)
	GetProject(ctx context.Context, projectID string) (org.Project, error)
	GetWbsItem(ctx context.Context, wbsItemID string) (org.WbsItem, error)
}

// Service is the facade every caller-visible assignment command goes
// through. It owns the transaction boundary: validation, the write, and the
// triggered weight recalculation commit or roll back together.
type Service struct {
	store      *Store
	cascades   CascadeStoreAPI
	org        orgAPI
	downstream DownstreamAPI
	lines      LineMappingAPI
}

func NewService(store *Store, orgStore *org.Store, downstream DownstreamAPI, lines LineMappingAPI) *Service {
	return &Service{store: store, cascades: store, org: orgStore, downstream: downstream, lines: lines}
}

func (s *Service) AssignProject(ctx context.Context, in ProjectAssignmentInput, actingUserID string) (ProjectAssignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return ProjectAssignment{}, err
	}
	defer tx.Rollback(ctx)

	facts, err := s.projectCreationFacts(ctx, tx, in)
	if err != nil {
		return ProjectAssignment{}, err
	}
	if err := ValidateProjectAssignmentCreation(facts); err != nil {
		return ProjectAssignment{}, err
	}

	order, err := s.store.NextProjectOrderTx(ctx, tx, in.PeriodID, in.EmployeeID)
	if err != nil {
		return ProjectAssignment{}, err
	}
	created, err := s.store.InsertProjectAssignmentTx(ctx, tx, in, actingUserID, order)
	if err != nil {
		return ProjectAssignment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ProjectAssignment{}, err
	}
	return created, nil
}

// CancelProjectAssignment is idempotent: a missing assignment is a no-op.
func (s *Service) CancelProjectAssignment(ctx context.Context, id, actingUserID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	assignment, found, err := s.store.GetProjectAssignmentTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	facts, err := s.deletionFacts(ctx, assignment.PeriodID)
	if err != nil {
		return err
	}
	if err := ValidateAssignmentDeletion(facts, assignment.PeriodID); err != nil {
		return err
	}

	remaining, err := s.store.WbsAssignmentCountTx(ctx, tx, assignment.PeriodID, assignment.EmployeeID, assignment.ProjectID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return validationErrorf(RuleWbsAssignmentsRemain,
			"project assignment %s still has %d wbs assignments", id, remaining)
	}

	if err := s.store.DeleteProjectAssignmentTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.store.RenumberProjectOrdersTx(ctx, tx, assignment.PeriodID, assignment.EmployeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// BulkAssignProjects is best-effort: each item runs in its own transaction
// and one item's failure never rolls back another's success.
func (s *Service) BulkAssignProjects(ctx context.Context, inputs []ProjectAssignmentInput, actingUserID string) BulkResult {
	var result BulkResult
	for i, in := range inputs {
		created, err := s.AssignProject(ctx, in, actingUserID)
		result.add(i, created.ID, err)
	}
	return result
}

func (s *Service) ReorderProjectAssignment(ctx context.Context, id string, direction Direction, actingUserID string) (ProjectAssignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return ProjectAssignment{}, err
	}
	defer tx.Rollback(ctx)

	assignment, found, err := s.store.GetProjectAssignmentTx(ctx, tx, id)
	if err != nil {
		return ProjectAssignment{}, err
	}
	if !found {
		return ProjectAssignment{}, &NotFoundError{Entity: "project assignment", ID: id}
	}

	siblings, err := s.store.ListProjectSiblingsTx(ctx, tx, assignment.PeriodID, assignment.EmployeeID)
	if err != nil {
		return ProjectAssignment{}, err
	}
	current, neighbor, ok := planSwap(siblings, id, direction)
	if !ok {
		return assignment, tx.Commit(ctx)
	}
	if err := s.store.SwapProjectOrderTx(ctx, tx, current, neighbor); err != nil {
		return ProjectAssignment{}, err
	}
	updated, _, err := s.store.GetProjectAssignmentTx(ctx, tx, id)
	if err != nil {
		return ProjectAssignment{}, err
	}
	return updated, tx.Commit(ctx)
}

func (s *Service) AssignWbs(ctx context.Context, in WbsAssignmentInput, actingUserID string) (WbsAssignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return WbsAssignment{}, err
	}
	defer tx.Rollback(ctx)

	facts, err := s.wbsCreationFacts(ctx, tx, in)
	if err != nil {
		return WbsAssignment{}, err
	}
	if err := ValidateWbsAssignmentCreation(facts); err != nil {
		return WbsAssignment{}, err
	}

	order, err := s.store.NextWbsOrderTx(ctx, tx, in.PeriodID, in.ProjectID, in.EmployeeID)
	if err != nil {
		return WbsAssignment{}, err
	}
	created, err := s.store.InsertWbsAssignmentTx(ctx, tx, in, actingUserID, order)
	if err != nil {
		return WbsAssignment{}, err
	}

	// Recalculation is best-effort: a failure here must not void the
	// assignment itself. Weights reconcile on the next triggering event.
	if err := s.recalculateWeightsTx(ctx, tx, in.EmployeeID, in.PeriodID); err != nil {
		slog.Warn("weight recalculation after wbs assignment failed",
			"employeeId", in.EmployeeID, "periodId", in.PeriodID, "err", err)
	} else if reloaded, found, err := s.store.GetWbsAssignmentTx(ctx, tx, created.ID); err == nil && found {
		created = reloaded
	}

	if err := tx.Commit(ctx); err != nil {
		return WbsAssignment{}, err
	}
	return created, nil
}

// CancelWbsAssignment is idempotent: a missing assignment is a no-op.
func (s *Service) CancelWbsAssignment(ctx context.Context, id, actingUserID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	assignment, found, err := s.store.GetWbsAssignmentTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	facts, err := s.deletionFacts(ctx, assignment.PeriodID)
	if err != nil {
		return err
	}
	if err := ValidateAssignmentDeletion(facts, assignment.PeriodID); err != nil {
		return err
	}

	if err := s.store.DeleteWbsAssignmentTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.store.RenumberWbsOrdersTx(ctx, tx, assignment.PeriodID, assignment.ProjectID, assignment.EmployeeID); err != nil {
		return err
	}
	if err := s.recalculateWeightsTx(ctx, tx, assignment.EmployeeID, assignment.PeriodID); err != nil {
		slog.Warn("weight recalculation after wbs cancellation failed",
			"employeeId", assignment.EmployeeID, "periodId", assignment.PeriodID, "err", err)
	}
	return tx.Commit(ctx)
}

func (s *Service) BulkAssignWbs(ctx context.Context, inputs []WbsAssignmentInput, actingUserID string) BulkResult {
	var result BulkResult
	for i, in := range inputs {
		created, err := s.AssignWbs(ctx, in, actingUserID)
		result.add(i, created.ID, err)
	}
	return result
}

func (s *Service) ReorderWbsAssignment(ctx context.Context, id string, direction Direction, actingUserID string) (WbsAssignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return WbsAssignment{}, err
	}
	defer tx.Rollback(ctx)

	assignment, found, err := s.store.GetWbsAssignmentTx(ctx, tx, id)
	if err != nil {
		return WbsAssignment{}, err
	}
	if !found {
		return WbsAssignment{}, &NotFoundError{Entity: "wbs assignment", ID: id}
	}

	siblings, err := s.store.ListWbsSiblingsTx(ctx, tx, assignment.PeriodID, assignment.ProjectID, assignment.EmployeeID)
	if err != nil {
		return WbsAssignment{}, err
	}
	current, neighbor, ok := planSwap(siblings, id, direction)
	if !ok {
		return assignment, tx.Commit(ctx)
	}
	if err := s.store.SwapWbsOrderTx(ctx, tx, current, neighbor); err != nil {
		return WbsAssignment{}, err
	}
	updated, _, err := s.store.GetWbsAssignmentTx(ctx, tx, id)
	if err != nil {
		return WbsAssignment{}, err
	}
	return updated, tx.Commit(ctx)
}

func (s *Service) ResetPeriodAssignments(ctx context.Context, periodID, actingUserID string) (CascadeResult, error) {
	return s.runCascade(ctx, Scope{PeriodID: periodID}, false)
}

func (s *Service) ResetProjectAssignments(ctx context.Context, projectID, actingUserID string) (CascadeResult, error) {
	return s.runCascade(ctx, Scope{ProjectID: projectID}, false)
}

func (s *Service) ResetEmployeeAssignments(ctx context.Context, employeeID, actingUserID string) (CascadeResult, error) {
	return s.runCascade(ctx, Scope{EmployeeID: employeeID}, false)
}

// DeleteAllAssignments is the administrative full wipe; per-assignment
// deletion validation is bypassed by design.
func (s *Service) DeleteAllAssignments(ctx context.Context, actingUserID string) (CascadeResult, error) {
	return s.runCascade(ctx, Scope{}, true)
}

func (s *Service) ListProjectAssignments(ctx context.Context, periodID, employeeID string) ([]ProjectAssignment, error) {
	return s.store.ListProjectAssignments(ctx, periodID, employeeID)
}

func (s *Service) ListWbsAssignments(ctx context.Context, periodID, employeeID, projectID string) ([]WbsAssignment, error) {
	return s.store.ListWbsAssignments(ctx, periodID, employeeID, projectID)
}

func (s *Service) GetWbsCriteria(ctx context.Context, wbsItemID string) (WbsEvaluationCriteria, error) {
	criteria, found, err := s.store.GetWbsCriteria(ctx, wbsItemID)
	if err != nil {
		return WbsEvaluationCriteria{}, err
	}
	if !found {
		return WbsEvaluationCriteria{}, &NotFoundError{Entity: "wbs evaluation criteria", ID: wbsItemID}
	}
	return criteria, nil
}

func (s *Service) projectCreationFacts(ctx context.Context, tx pgx.Tx, in ProjectAssignmentInput) (ProjectCreationFacts, error) {
	facts := ProjectCreationFacts{Input: in}

	period, err := s.org.GetPeriod(ctx, in.PeriodID)
	if err == nil {
		facts.Period, facts.PeriodFound = period, true
	} else if !errors.Is(err, org.ErrPeriodNotFound) {
		return facts, err
	}

	employee, err := s.org.GetEmployee(ctx, in.EmployeeID)
	if err == nil {
		facts.Employee, facts.EmployeeFound = employee, true
	} else if !errors.Is(err, org.ErrEmployeeNotFound) {
		return facts, err
	}

	if _, err := s.org.GetProject(ctx, in.ProjectID); err == nil {
		facts.ProjectFound = true
	} else if !errors.Is(err, org.ErrProjectNotFound) {
		return facts, err
	}

	duplicate, err := s.store.ProjectAssignmentExistsTx(ctx, tx, in.PeriodID, in.EmployeeID, in.ProjectID)
	if err != nil {
		return facts, err
	}
	facts.DuplicateExists = duplicate
	return facts, nil
}

func (s *Service) wbsCreationFacts(ctx context.Context, tx pgx.Tx, in WbsAssignmentInput) (WbsCreationFacts, error) {
	facts := WbsCreationFacts{Input: in}

	period, err := s.org.GetPeriod(ctx, in.PeriodID)
	if err == nil {
		facts.Period, facts.PeriodFound = period, true
	} else if !errors.Is(err, org.ErrPeriodNotFound) {
		return facts, err
	}

	employee, err := s.org.GetEmployee(ctx, in.EmployeeID)
	if err == nil {
		facts.Employee, facts.EmployeeFound = employee, true
	} else if !errors.Is(err, org.ErrEmployeeNotFound) {
		return facts, err
	}

	if _, err := s.org.GetProject(ctx, in.ProjectID); err == nil {
		facts.ProjectFound = true
	} else if !errors.Is(err, org.ErrProjectNotFound) {
		return facts, err
	}

	item, err := s.org.GetWbsItem(ctx, in.WbsItemID)
	if err == nil {
		facts.WbsItem, facts.WbsItemFound = item, true
	} else if !errors.Is(err, org.ErrWbsItemNotFound) {
		return facts, err
	}

	assigned, err := s.store.ProjectAssignmentExistsTx(ctx, tx, in.PeriodID, in.EmployeeID, in.ProjectID)
	if err != nil {
		return facts, err
	}
	facts.ProjectAssigned = assigned

	duplicate, err := s.store.WbsAssignmentExistsTx(ctx, tx, in.PeriodID, in.EmployeeID, in.ProjectID, in.WbsItemID)
	if err != nil {
		return facts, err
	}
	facts.DuplicateExists = duplicate
	return facts, nil
}

package assignment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pms/internal/domain/org"
)

// recalculateWeightsTx reloads every WBS assignment of the (employee, period)
// pair, reallocates weights from current criteria importance and persists
// them inside the caller's transaction.
func (s *Service) recalculateWeightsTx(ctx context.Context, tx pgx.Tx, employeeID, periodID string) error {
	items, err := s.store.WeightItemsTx(ctx, tx, employeeID, periodID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	weights := AllocateWeights(items)
	for i, item := range items {
		if err := s.store.UpdateWbsWeightTx(ctx, tx, item.AssignmentID, weights[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) RecalculateWeightsForEmployeePeriod(ctx context.Context, employeeID, periodID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.recalculateWeightsTx(ctx, tx, employeeID, periodID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RecalculateWeightsForWbsItem fans a criteria change out to every distinct
// (employee, period) pair holding an assignment on the WBS item.
func (s *Service) RecalculateWeightsForWbsItem(ctx context.Context, wbsItemID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.recalculateForWbsItemTx(ctx, tx, wbsItemID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) recalculateForWbsItemTx(ctx context.Context, tx pgx.Tx, wbsItemID string) error {
	pairs, err := s.store.DistinctPairsForWbsItemTx(ctx, tx, wbsItemID)
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		if err := s.recalculateWeightsTx(ctx, tx, pair.EmployeeID, pair.PeriodID); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWbsCriteria stores the WBS item's current criteria and ripples the
// importance change into every affected employee's weights, all in one
// transaction.
func (s *Service) UpsertWbsCriteria(ctx context.Context, wbsItemID, criteriaText string, importance int, actingUserID string) (WbsEvaluationCriteria, error) {
	if importance < 1 || importance > 10 {
		return WbsEvaluationCriteria{}, validationErrorf(RuleImportanceOutOfRange,
			"importance must be between 1 and 10, got %d", importance)
	}
	if _, err := s.org.GetWbsItem(ctx, wbsItemID); err != nil {
		if errors.Is(err, org.ErrWbsItemNotFound) {
			return WbsEvaluationCriteria{}, validationErrorf(RuleWbsItemNotFound, "wbs item %s not found", wbsItemID)
		}
		return WbsEvaluationCriteria{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return WbsEvaluationCriteria{}, err
	}
	defer tx.Rollback(ctx)

	criteria, _, err := s.store.UpsertWbsCriteriaTx(ctx, tx, wbsItemID, criteriaText, importance, actingUserID)
	if err != nil {
		return WbsEvaluationCriteria{}, err
	}
	if err := s.recalculateForWbsItemTx(ctx, tx, wbsItemID); err != nil {
		return WbsEvaluationCriteria{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return WbsEvaluationCriteria{}, err
	}
	return criteria, nil
}

// DeleteWbsCriteria is idempotent; removing a criteria resets the affected
// weights, which may zero an entire employee/period set.
func (s *Service) DeleteWbsCriteria(ctx context.Context, wbsItemID, actingUserID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.store.DeleteWbsCriteriaTx(ctx, tx, wbsItemID); err != nil {
		return err
	}
	if err := s.recalculateForWbsItemTx(ctx, tx, wbsItemID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Package evaluation holds the engine's view of the downstream evaluation
// and deliverable stores. Their content is owned elsewhere; the assignment
// cascade only needs to enumerate and delete (or unmap) by filter.
package evaluation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/assignment"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) DeletePeerEvaluationQuestionMappingsTx(ctx context.Context, tx pgx.Tx, scope assignment.Scope) (int64, error) {
	clause, args := peerScopeClause(scope)
	tag, err := tx.Exec(ctx, `
    DELETE FROM peer_evaluation_question_mappings
    WHERE peer_evaluation_id IN (SELECT id FROM peer_evaluations WHERE 1=1`+clause+`)
  `, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeletePeerEvaluationsTx(ctx context.Context, tx pgx.Tx, scope assignment.Scope) (int64, error) {
	clause, args := peerScopeClause(scope)
	tag, err := tx.Exec(ctx, "DELETE FROM peer_evaluations WHERE 1=1"+clause, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteDownwardEvaluationsTx(ctx context.Context, tx pgx.Tx, scope assignment.Scope) (int64, error) {
	clause, args := wbsScopedClause(scope)
	tag, err := tx.Exec(ctx, "DELETE FROM downward_evaluations WHERE 1=1"+clause, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteSelfEvaluationsTx(ctx context.Context, tx pgx.Tx, scope assignment.Scope) (int64, error) {
	clause, args := wbsScopedClause(scope)
	tag, err := tx.Exec(ctx, "DELETE FROM self_evaluations WHERE 1=1"+clause, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UnmapDeliverablesTx detaches deliverables from a removed WBS assignment
// without destroying the uploaded artifact rows.
func (s *Store) UnmapDeliverablesTx(ctx context.Context, tx pgx.Tx, employeeID, wbsItemID string) (int64, error) {
	tag, err := tx.Exec(ctx, `
    UPDATE deliverables
    SET wbs_item_id = NULL, mapped_at = NULL
    WHERE employee_id = $1 AND wbs_item_id = $2
  `, employeeID, wbsItemID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// peerScopeClause filters peer evaluations, which carry period, project and
// evaluatee columns directly.
func peerScopeClause(scope assignment.Scope) (string, []any) {
	clause := ""
	var args []any
	if scope.PeriodID != "" {
		args = append(args, scope.PeriodID)
		clause += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	if scope.ProjectID != "" {
		args = append(args, scope.ProjectID)
		clause += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if scope.EmployeeID != "" {
		args = append(args, scope.EmployeeID)
		clause += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	return clause, args
}

// wbsScopedClause filters self/downward evaluations; project scoping goes
// through the referenced WBS item.
func wbsScopedClause(scope assignment.Scope) (string, []any) {
	clause := ""
	var args []any
	if scope.PeriodID != "" {
		args = append(args, scope.PeriodID)
		clause += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	if scope.ProjectID != "" {
		args = append(args, scope.ProjectID)
		clause += fmt.Sprintf(" AND wbs_item_id IN (SELECT id FROM wbs_items WHERE project_id = $%d)", len(args))
	}
	if scope.EmployeeID != "" {
		args = append(args, scope.EmployeeID)
		clause += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	return clause, args
}

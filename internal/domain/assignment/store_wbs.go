package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const wbsAssignmentColumns = "id, period_id, employee_id, project_id, wbs_item_id, assigned_by, assigned_date, display_order, weight"

func scanWbsAssignment(row pgx.Row) (WbsAssignment, error) {
	var a WbsAssignment
	err := row.Scan(&a.ID, &a.PeriodID, &a.EmployeeID, &a.ProjectID, &a.WbsItemID, &a.AssignedBy, &a.AssignedDate, &a.DisplayOrder, &a.Weight)
	return a, err
}

func (s *Store) ListWbsAssignments(ctx context.Context, periodID, employeeID, projectID string) ([]WbsAssignment, error) {
	query := "SELECT " + wbsAssignmentColumns + " FROM wbs_assignments WHERE 1=1"
	var args []any
	if periodID != "" {
		args = append(args, periodID)
		query += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	if employeeID != "" {
		args = append(args, employeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if projectID != "" {
		args = append(args, projectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	query += " ORDER BY period_id, project_id, employee_id, display_order"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []WbsAssignment
	for rows.Next() {
		assignment, err := scanWbsAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (s *Store) GetWbsAssignmentTx(ctx context.Context, tx pgx.Tx, id string) (WbsAssignment, bool, error) {
	assignment, err := scanWbsAssignment(tx.QueryRow(ctx, `
    SELECT `+wbsAssignmentColumns+`
    FROM wbs_assignments
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return WbsAssignment{}, false, nil
	}
	if err != nil {
		return WbsAssignment{}, false, err
	}
	return assignment, true, nil
}

func (s *Store) WbsAssignmentExistsTx(ctx context.Context, tx pgx.Tx, periodID, employeeID, projectID, wbsItemID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM wbs_assignments
      WHERE period_id = $1 AND employee_id = $2 AND project_id = $3 AND wbs_item_id = $4
    )
  `, periodID, employeeID, projectID, wbsItemID).Scan(&exists)
	return exists, err
}

func (s *Store) WbsAssignmentCountTx(ctx context.Context, tx pgx.Tx, periodID, employeeID, projectID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM wbs_assignments
    WHERE period_id = $1 AND employee_id = $2 AND project_id = $3
  `, periodID, employeeID, projectID).Scan(&count)
	return count, err
}

func (s *Store) NextWbsOrderTx(ctx context.Context, tx pgx.Tx, periodID, projectID, employeeID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM wbs_assignments
    WHERE period_id = $1 AND project_id = $2 AND employee_id = $3
  `, periodID, projectID, employeeID).Scan(&count)
	return count, err
}

func (s *Store) InsertWbsAssignmentTx(ctx context.Context, tx pgx.Tx, in WbsAssignmentInput, assignedBy string, displayOrder int) (WbsAssignment, error) {
	return scanWbsAssignment(tx.QueryRow(ctx, `
    INSERT INTO wbs_assignments (period_id, employee_id, project_id, wbs_item_id, assigned_by, display_order)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+wbsAssignmentColumns+`
  `, in.PeriodID, in.EmployeeID, in.ProjectID, in.WbsItemID, assignedBy, displayOrder))
}

func (s *Store) DeleteWbsAssignmentTx(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, "DELETE FROM wbs_assignments WHERE id = $1", id)
	return err
}

func (s *Store) ListWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]WbsAssignment, error) {
	clause, args := scopeClause(scope, nil)
	rows, err := tx.Query(ctx, "SELECT "+wbsAssignmentColumns+" FROM wbs_assignments WHERE 1=1"+clause+" ORDER BY period_id, project_id, employee_id, display_order", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []WbsAssignment
	for rows.Next() {
		assignment, err := scanWbsAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (s *Store) DeleteWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	clause, args := scopeClause(scope, nil)
	tag, err := tx.Exec(ctx, "DELETE FROM wbs_assignments WHERE 1=1"+clause, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) RenumberWbsOrdersTx(ctx context.Context, tx pgx.Tx, periodID, projectID, employeeID string) error {
	_, err := tx.Exec(ctx, `
    WITH ranked AS (
      SELECT id, ROW_NUMBER() OVER (ORDER BY display_order, id) - 1 AS new_order
      FROM wbs_assignments
      WHERE period_id = $1 AND project_id = $2 AND employee_id = $3
    )
    UPDATE wbs_assignments wa
    SET display_order = ranked.new_order
    FROM ranked
    WHERE wa.id = ranked.id
  `, periodID, projectID, employeeID)
	return err
}

func (s *Store) ListWbsSiblingsTx(ctx context.Context, tx pgx.Tx, periodID, projectID, employeeID string) ([]orderedRow, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, display_order
    FROM wbs_assignments
    WHERE period_id = $1 AND project_id = $2 AND employee_id = $3
    ORDER BY display_order, id
    FOR UPDATE
  `, periodID, projectID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderedRows(rows)
}

func (s *Store) SwapWbsOrderTx(ctx context.Context, tx pgx.Tx, current, neighbor orderedRow) error {
	_, err := tx.Exec(ctx, `
    UPDATE wbs_assignments
    SET display_order = CASE id WHEN $1 THEN $2 WHEN $3 THEN $4 END
    WHERE id IN ($1, $3)
  `, current.ID, neighbor.DisplayOrder, neighbor.ID, current.DisplayOrder)
	return err
}

// WeightItemsTx loads the employee's WBS assignments for a period together
// with each WBS item's current criteria importance (0 when none), in the
// stable order weight allocation relies on.
func (s *Store) WeightItemsTx(ctx context.Context, tx pgx.Tx, employeeID, periodID string) ([]WeightedItem, error) {
	rows, err := tx.Query(ctx, `
    SELECT wa.id, COALESCE(c.importance, 0)
    FROM wbs_assignments wa
    LEFT JOIN LATERAL (
      SELECT importance
      FROM wbs_evaluation_criteria
      WHERE wbs_item_id = wa.wbs_item_id
      ORDER BY created_at, id
      LIMIT 1
    ) c ON true
    WHERE wa.employee_id = $1 AND wa.period_id = $2
    ORDER BY wa.project_id, wa.display_order, wa.id
  `, employeeID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WeightedItem
	for rows.Next() {
		var item WeightedItem
		if err := rows.Scan(&item.AssignmentID, &item.Importance); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) UpdateWbsWeightTx(ctx context.Context, tx pgx.Tx, id string, weight float64) error {
	_, err := tx.Exec(ctx, "UPDATE wbs_assignments SET weight = $1 WHERE id = $2", weight, id)
	return err
}

// DistinctPairsForWbsItemTx finds every (employee, period) whose weights a
// criteria change on the WBS item can ripple into.
func (s *Store) DistinctPairsForWbsItemTx(ctx context.Context, tx pgx.Tx, wbsItemID string) ([]EmployeePeriod, error) {
	rows, err := tx.Query(ctx, `
    SELECT DISTINCT employee_id, period_id
    FROM wbs_assignments
    WHERE wbs_item_id = $1
    ORDER BY employee_id, period_id
  `, wbsItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []EmployeePeriod
	for rows.Next() {
		var pair EmployeePeriod
		if err := rows.Scan(&pair.EmployeeID, &pair.PeriodID); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const projectAssignmentColumns = "id, period_id, employee_id, project_id, assigned_by, assigned_date, display_order"

func scanProjectAssignment(row pgx.Row) (ProjectAssignment, error) {
	var a ProjectAssignment
	err := row.Scan(&a.ID, &a.PeriodID, &a.EmployeeID, &a.ProjectID, &a.AssignedBy, &a.AssignedDate, &a.DisplayOrder)
	return a, err
}

func (s *Store) ListProjectAssignments(ctx context.Context, periodID, employeeID string) ([]ProjectAssignment, error) {
	query := "SELECT " + projectAssignmentColumns + " FROM project_assignments WHERE 1=1"
	var args []any
	if periodID != "" {
		args = append(args, periodID)
		query += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	if employeeID != "" {
		args = append(args, employeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY period_id, employee_id, display_order"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []ProjectAssignment
	for rows.Next() {
		assignment, err := scanProjectAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (s *Store) GetProjectAssignmentTx(ctx context.Context, tx pgx.Tx, id string) (ProjectAssignment, bool, error) {
	assignment, err := scanProjectAssignment(tx.QueryRow(ctx, `
    SELECT `+projectAssignmentColumns+`
    FROM project_assignments
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ProjectAssignment{}, false, nil
	}
	if err != nil {
		return ProjectAssignment{}, false, err
	}
	return assignment, true, nil
}

func (s *Store) ProjectAssignmentExistsTx(ctx context.Context, tx pgx.Tx, periodID, employeeID, projectID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM project_assignments
      WHERE period_id = $1 AND employee_id = $2 AND project_id = $3
    )
  `, periodID, employeeID, projectID).Scan(&exists)
	return exists, err
}

func (s *Store) NextProjectOrderTx(ctx context.Context, tx pgx.Tx, periodID, employeeID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM project_assignments
    WHERE period_id = $1 AND employee_id = $2
  `, periodID, employeeID).Scan(&count)
	return count, err
}

func (s *Store) InsertProjectAssignmentTx(ctx context.Context, tx pgx.Tx, in ProjectAssignmentInput, assignedBy string, displayOrder int) (ProjectAssignment, error) {
	return scanProjectAssignment(tx.QueryRow(ctx, `
    INSERT INTO project_assignments (period_id, employee_id, project_id, assigned_by, display_order)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+projectAssignmentColumns+`
  `, in.PeriodID, in.EmployeeID, in.ProjectID, assignedBy, displayOrder))
}

func (s *Store) DeleteProjectAssignmentTx(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, "DELETE FROM project_assignments WHERE id = $1", id)
	return err
}

func (s *Store) ListProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]ProjectAssignment, error) {
	clause, args := scopeClause(scope, nil)
	rows, err := tx.Query(ctx, "SELECT "+projectAssignmentColumns+" FROM project_assignments WHERE 1=1"+clause+" ORDER BY period_id, employee_id, display_order", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []ProjectAssignment
	for rows.Next() {
		assignment, err := scanProjectAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (s *Store) DeleteProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	clause, args := scopeClause(scope, nil)
	tag, err := tx.Exec(ctx, "DELETE FROM project_assignments WHERE 1=1"+clause, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RenumberProjectOrdersTx compacts display orders back to 0..n-1 after a
// deletion so the scope keeps a gapless permutation.
func (s *Store) RenumberProjectOrdersTx(ctx context.Context, tx pgx.Tx, periodID, employeeID string) error {
	_, err := tx.Exec(ctx, `
    WITH ranked AS (
      SELECT id, ROW_NUMBER() OVER (ORDER BY display_order, id) - 1 AS new_order
      FROM project_assignments
      WHERE period_id = $1 AND employee_id = $2
    )
    UPDATE project_assignments pa
    SET display_order = ranked.new_order
    FROM ranked
    WHERE pa.id = ranked.id
  `, periodID, employeeID)
	return err
}

func (s *Store) ListProjectSiblingsTx(ctx context.Context, tx pgx.Tx, periodID, employeeID string) ([]orderedRow, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, display_order
    FROM project_assignments
    WHERE period_id = $1 AND employee_id = $2
    ORDER BY display_order, id
    FOR UPDATE
  `, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderedRows(rows)
}

// SwapProjectOrderTx exchanges the display orders of exactly two rows in one
// statement, so no reader ever observes a duplicate order.
func (s *Store) SwapProjectOrderTx(ctx context.Context, tx pgx.Tx, current, neighbor orderedRow) error {
	_, err := tx.Exec(ctx, `
    UPDATE project_assignments
    SET display_order = CASE id WHEN $1 THEN $2 WHEN $3 THEN $4 END
    WHERE id IN ($1, $3)
  `, current.ID, neighbor.DisplayOrder, neighbor.ID, current.DisplayOrder)
	return err
}

func scanOrderedRows(rows pgx.Rows) ([]orderedRow, error) {
	var out []orderedRow
	for rows.Next() {
		var row orderedRow
		if err := rows.Scan(&row.ID, &row.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

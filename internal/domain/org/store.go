package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPeriodNotFound   = errors.New("evaluation period not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrWbsItemNotFound  = errors.New("wbs item not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (EvaluationPeriod, error) {
	var period EvaluationPeriod
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, self_eval_enabled, peer_eval_enabled
    FROM evaluation_periods
    WHERE id = $1
  `, periodID).Scan(&period.ID, &period.Name, &period.StartDate, &period.EndDate, &period.Status, &period.SelfEvalEnabled, &period.PeerEvalEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return EvaluationPeriod{}, ErrPeriodNotFound
	}
	if err != nil {
		return EvaluationPeriod{}, err
	}
	return period, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var employee Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, manager_id, status
    FROM employees
    WHERE id = $1 AND deleted_at IS NULL
  `, employeeID).Scan(&employee.ID, &employee.Name, &employee.Email, &employee.ManagerID, &employee.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return employee, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (Project, error) {
	var project Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&project.ID, &project.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	}
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *Store) GetWbsItem(ctx context.Context, wbsItemID string) (WbsItem, error) {
	var item WbsItem
	err := s.DB.QueryRow(ctx, `
    SELECT id, project_id, parent_id, level, name
    FROM wbs_items
    WHERE id = $1
  `, wbsItemID).Scan(&item.ID, &item.ProjectID, &item.ParentID, &item.Level, &item.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return WbsItem{}, ErrWbsItemNotFound
	}
	if err != nil {
		return WbsItem{}, err
	}
	return item, nil
}

// ListEnrolled returns every employee enrolled in the period, including
// excluded ones so callers can decide how to report them.
func (s *Store) ListEnrolled(ctx context.Context, periodID string) ([]Enrollment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT pe.employee_id, pe.excluded
    FROM period_enrollments pe
    JOIN employees e ON e.id = pe.employee_id
    WHERE pe.period_id = $1 AND e.deleted_at IS NULL
    ORDER BY pe.employee_id
  `, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []Enrollment
	for rows.Next() {
		var enrollment Enrollment
		if err := rows.Scan(&enrollment.EmployeeID, &enrollment.Excluded); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

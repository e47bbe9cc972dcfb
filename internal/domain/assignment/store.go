package assignment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// EmployeePeriod is one distinct (employee, period) pair whose weights need
// reconciliation after a mutation.
type EmployeePeriod struct {
	EmployeeID string
	PeriodID   string
}

// scopeClause renders optional period/project/employee filters for tables
// carrying period_id, project_id and employee_id columns.
func scopeClause(scope Scope, args []any) (string, []any) {
	clause := ""
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

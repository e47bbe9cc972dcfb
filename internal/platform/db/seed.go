package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/evalline"
	"pms/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureEvaluationLines(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedDemoData && cfg.Environment != "production" {
		if err := seedDemoData(ctx, pool); err != nil {
			return err
		}
	}

	return nil
}

type seedLine struct {
	evaluatorType  string
	evalOrder      int
	isRequired     bool
	isAutoAssigned bool
}

func ensureEvaluationLines(ctx context.Context, pool *pgxpool.Pool) error {
	lines := []seedLine{
		{evalline.EvaluatorTypePrimary, 1, true, true},
		{evalline.EvaluatorTypeSecondary, 2, false, false},
	}
	for _, line := range lines {
		var count int
		err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_lines WHERE evaluator_type = $1", line.evaluatorType).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		_, err = pool.Exec(ctx, `
      INSERT INTO evaluation_lines (evaluator_type, eval_order, is_required, is_auto_assigned)
      VALUES ($1,$2,$3,$4)
    `, line.evaluatorType, line.evalOrder, line.isRequired, line.isAutoAssigned)
		if err != nil {
			return err
		}
	}
	return nil
}

// seedDemoData loads a small development dataset: one open period, a manager
// with two reports, one project with a WBS tree, and full enrollments.
func seedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_periods").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var periodID string
	err := pool.QueryRow(ctx, `
    INSERT INTO evaluation_periods (name, start_date, end_date, status, self_eval_enabled, peer_eval_enabled)
    VALUES ('FY26 H1', '2026-01-01', '2026-06-30', 'in_progress', TRUE, TRUE)
    RETURNING id
  `).Scan(&periodID)
	if err != nil {
		return err
	}

	var managerID string
	err = pool.QueryRow(ctx, `
    INSERT INTO employees (name, email, status)
    VALUES ('Jordan Blake', 'jordan.blake@example.com', 'active')
    RETURNING id
  `).Scan(&managerID)
	if err != nil {
		return err
	}

	reportEmails := map[string]string{
		"Sam Riley": "sam.riley@example.com",
		"Alex Chen": "alex.chen@example.com",
	}
	employeeIDs := []string{managerID}
	for name, email := range reportEmails {
		var id string
		err = pool.QueryRow(ctx, `
      INSERT INTO employees (name, email, manager_id, status)
      VALUES ($1, $2, $3, 'active')
      RETURNING id
    `, name, email, managerID).Scan(&id)
		if err != nil {
			return err
		}
		employeeIDs = append(employeeIDs, id)
	}

	var projectID string
	err = pool.QueryRow(ctx, `
    INSERT INTO projects (name) VALUES ('Platform Modernization') RETURNING id
  `).Scan(&projectID)
	if err != nil {
		return err
	}

	var rootID string
	err = pool.QueryRow(ctx, `
    INSERT INTO wbs_items (project_id, level, name)
    VALUES ($1, 0, 'Delivery')
    RETURNING id
  `, projectID).Scan(&rootID)
	if err != nil {
		return err
	}
	for _, name := range []string{"API migration", "Data pipeline", "Rollout"} {
		_, err = pool.Exec(ctx, `
      INSERT INTO wbs_items (project_id, parent_id, level, name)
      VALUES ($1, $2, 1, $3)
    `, projectID, rootID, name)
		if err != nil {
			return err
		}
	}

	for _, employeeID := range employeeIDs {
		_, err = pool.Exec(ctx, `
      INSERT INTO period_enrollments (period_id, employee_id, excluded)
      VALUES ($1, $2, FALSE)
      ON CONFLICT DO NOTHING
    `, periodID, employeeID)
		if err != nil {
			return err
		}
	}

	return nil
}

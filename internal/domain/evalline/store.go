package evalline

import (
	"context"
	"errors"

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

const lineColumns = "id, evaluator_type, eval_order, is_required, is_auto_assigned"
const mappingColumns = "id, employee_id, evaluator_id, wbs_item_id, evaluation_line_id, created_by, created_at"

func scanLine(row pgx.Row) (EvaluationLine, error) {
	var line EvaluationLine
	err := row.Scan(&line.ID, &line.EvaluatorType, &line.EvalOrder, &line.IsRequired, &line.IsAutoAssigned)
	return line, err
}

func scanMapping(row pgx.Row) (Mapping, error) {
	var m Mapping
	err := row.Scan(&m.ID, &m.EmployeeID, &m.EvaluatorID, &m.WbsItemID, &m.EvaluationLineID, &m.CreatedBy, &m.CreatedAt)
	return m, err
}

func (s *Store) FindLineByType(ctx context.Context, evaluatorType string) (EvaluationLine, bool, error) {
	line, err := scanLine(s.DB.QueryRow(ctx, `
    SELECT `+lineColumns+`
    FROM evaluation_lines
    WHERE evaluator_type = $1
    ORDER BY eval_order
    LIMIT 1
  `, evaluatorType))
	if errors.Is(err, pgx.ErrNoRows) {
		return EvaluationLine{}, false, nil
	}
	if err != nil {
		return EvaluationLine{}, false, err
	}
	return line, true, nil
}

func (s *Store) FindLineByTypeTx(ctx context.Context, tx pgx.Tx, evaluatorType string) (EvaluationLine, bool, error) {
	line, err := scanLine(tx.QueryRow(ctx, `
    SELECT `+lineColumns+`
    FROM evaluation_lines
    WHERE evaluator_type = $1
    ORDER BY eval_order
    LIMIT 1
  `, evaluatorType))
	if errors.Is(err, pgx.ErrNoRows) {
		return EvaluationLine{}, false, nil
	}
	if err != nil {
		return EvaluationLine{}, false, err
	}
	return line, true, nil
}

func (s *Store) CreateLineTx(ctx context.Context, tx pgx.Tx, line EvaluationLine) (EvaluationLine, error) {
	return scanLine(tx.QueryRow(ctx, `
    INSERT INTO evaluation_lines (evaluator_type, eval_order, is_required, is_auto_assigned)
    VALUES ($1,$2,$3,$4)
    RETURNING `+lineColumns+`
  `, line.EvaluatorType, line.EvalOrder, line.IsRequired, line.IsAutoAssigned))
}

// FindMappingTx matches the full (employee, evaluator, wbsItem, line) tuple;
// wbsItemID nil matches the primary (whole-employee) binding.
func (s *Store) FindMappingTx(ctx context.Context, tx pgx.Tx, employeeID, evaluatorID string, wbsItemID *string, lineID string) (Mapping, bool, error) {
	mapping, err := scanMapping(tx.QueryRow(ctx, `
    SELECT `+mappingColumns+`
    FROM evaluation_line_mappings
    WHERE employee_id = $1 AND evaluator_id = $2
      AND wbs_item_id IS NOT DISTINCT FROM $3
      AND evaluation_line_id = $4
  `, employeeID, evaluatorID, wbsItemID, lineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, false, nil
	}
	if err != nil {
		return Mapping{}, false, err
	}
	return mapping, true, nil
}

func (s *Store) CreateMappingTx(ctx context.Context, tx pgx.Tx, employeeID, evaluatorID string, wbsItemID *string, lineID, createdBy string) (Mapping, error) {
	return scanMapping(tx.QueryRow(ctx, `
    INSERT INTO evaluation_line_mappings (employee_id, evaluator_id, wbs_item_id, evaluation_line_id, created_by)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+mappingColumns+`
  `, employeeID, evaluatorID, wbsItemID, lineID, createdBy))
}

func (s *Store) MappingExists(ctx context.Context, employeeID, evaluatorID string, wbsItemID *string, lineID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM evaluation_line_mappings
      WHERE employee_id = $1 AND evaluator_id = $2
        AND wbs_item_id IS NOT DISTINCT FROM $3
        AND evaluation_line_id = $4
    )
  `, employeeID, evaluatorID, wbsItemID, lineID).Scan(&exists)
	return exists, err
}

func (s *Store) ListMappingsForEmployee(ctx context.Context, employeeID string) ([]Mapping, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+mappingColumns+`
    FROM evaluation_line_mappings
    WHERE employee_id = $1
    ORDER BY created_at, id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []Mapping
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

func (s *Store) DeleteAllMappingsTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	tag, err := tx.Exec(ctx, "DELETE FROM evaluation_line_mappings")
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteMappingsByEmployeesTx(ctx context.Context, tx pgx.Tx, employeeIDs []string) (int64, error) {
	tag, err := tx.Exec(ctx, "DELETE FROM evaluation_line_mappings WHERE employee_id = ANY($1)", employeeIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteSecondaryMappingsByProjectTx(ctx context.Context, tx pgx.Tx, projectID string) (int64, error) {
	tag, err := tx.Exec(ctx, `
    DELETE FROM evaluation_line_mappings
    WHERE wbs_item_id IN (SELECT id FROM wbs_items WHERE project_id = $1)
  `, projectID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

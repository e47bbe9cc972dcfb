package assignment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const criteriaColumns = "id, wbs_item_id, criteria, importance, updated_by, updated_at"

func scanCriteria(row pgx.Row) (WbsEvaluationCriteria, error) {
	var c WbsEvaluationCriteria
	err := row.Scan(&c.ID, &c.WbsItemID, &c.Criteria, &c.Importance, &c.UpdatedBy, &c.UpdatedAt)
	return c, err
}

func (s *Store) GetWbsCriteria(ctx context.Context, wbsItemID string) (WbsEvaluationCriteria, bool, error) {
	criteria, err := scanCriteria(s.DB.QueryRow(ctx, `
    SELECT `+criteriaColumns+`
    FROM wbs_evaluation_criteria
    WHERE wbs_item_id = $1
    ORDER BY created_at, id
    LIMIT 1
  `, wbsItemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return WbsEvaluationCriteria{}, false, nil
	}
	if err != nil {
		return WbsEvaluationCriteria{}, false, err
	}
	return criteria, true, nil
}

// UpsertWbsCriteriaTx updates the oldest existing criteria row for the WBS
// item, inserting only when none exists. The boolean reports an insert.
func (s *Store) UpsertWbsCriteriaTx(ctx context.Context, tx pgx.Tx, wbsItemID, criteriaText string, importance int, updatedBy string) (WbsEvaluationCriteria, bool, error) {
	updated, err := scanCriteria(tx.QueryRow(ctx, `
    UPDATE wbs_evaluation_criteria
    SET criteria = $1, importance = $2, updated_by = $3, updated_at = now()
    WHERE id = (
      SELECT id FROM wbs_evaluation_criteria
      WHERE wbs_item_id = $4
      ORDER BY created_at, id
      LIMIT 1
    )
    RETURNING `+criteriaColumns+`
  `, criteriaText, importance, updatedBy, wbsItemID))
	if err == nil {
		return updated, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return WbsEvaluationCriteria{}, false, err
	}

	created, err := scanCriteria(tx.QueryRow(ctx, `
    INSERT INTO wbs_evaluation_criteria (wbs_item_id, criteria, importance, updated_by)
    VALUES ($1,$2,$3,$4)
    RETURNING `+criteriaColumns+`
  `, wbsItemID, criteriaText, importance, updatedBy))
	if err != nil {
		return WbsEvaluationCriteria{}, false, err
	}
	return created, true, nil
}

func (s *Store) DeleteWbsCriteriaTx(ctx context.Context, tx pgx.Tx, wbsItemID string) (int64, error) {
	tag, err := tx.Exec(ctx, "DELETE FROM wbs_evaluation_criteria WHERE wbs_item_id = $1", wbsItemID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

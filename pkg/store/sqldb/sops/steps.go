package sops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

var stepColumns = []string{
	"id", "sop_id", "step_number", "title", "COALESCE(description, '')", "expected_duration",
	"COALESCE(responsible_role, '')", "is_critical", "created_at", "updated_at",
}

func (s *defaultStore) CreateStep(ctx context.Context, step *domain.SOPStep) error {
	q := s.db.Builder().Insert(stepsTable).
		Columns(
			"id", "sop_id", "step_number", "title", "description", "expected_duration",
			"responsible_role", "is_critical", "created_at", "updated_at",
		).
		Values(
			step.ID, step.SOPID, step.StepNumber, step.Title, sqldb.NullString(step.Description),
			step.ExpectedDuration, sqldb.NullString(step.ResponsibleRole), step.IsCritical,
			step.CreatedAt, step.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert sop step: %w", err)
	}
	return nil
}

func (s *defaultStore) GetStep(ctx context.Context, sopID, stepID string) (*domain.SOPStep, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(stepColumns...).From(stepsTable).
		Where(sq.Eq{"id": stepID, "sop_id": sopID}))
	if err != nil {
		return nil, err
	}
	step, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("sop step", stepID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop step: %w", err)
	}
	return step, nil
}

func (s *defaultStore) ListSteps(ctx context.Context, sopID string) ([]domain.SOPStep, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select(stepColumns...).From(stepsTable).
		Where(sq.Eq{"sop_id": sopID}).OrderBy("step_number"))
	if err != nil {
		return nil, fmt.Errorf("failed to query sop steps: %w", err)
	}
	defer rows.Close()

	items := []domain.SOPStep{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sop step: %w", err)
		}
		items = append(items, *step)
	}
	return items, rows.Err()
}

func (s *defaultStore) MaxStepNumber(ctx context.Context, sopID string) (int, error) {
	return s.db.Count(ctx, s.db.Builder().Select("COALESCE(MAX(step_number), 0)").From(stepsTable).
		Where(sq.Eq{"sop_id": sopID}))
}

func (s *defaultStore) StepNumberTaken(ctx context.Context, sopID string, number int, exceptID string) (bool, error) {
	q := s.db.Builder().Select("COUNT(*)").From(stepsTable).
		Where(sq.Eq{"sop_id": sopID, "step_number": number})
	if exceptID != "" {
		q = q.Where(sq.NotEq{"id": exceptID})
	}
	n, err := s.db.Count(ctx, q)
	return n > 0, err
}

func (s *defaultStore) UpdateStep(ctx context.Context, sopID, stepID string, u domain.SOPStepUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.StepNumber != nil {
		set["step_number"] = *u.StepNumber
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ExpectedDuration != nil {
		set["expected_duration"] = *u.ExpectedDuration
	}
	if u.ResponsibleRole != nil {
		set["responsible_role"] = *u.ResponsibleRole
	}
	if u.IsCritical != nil {
		set["is_critical"] = *u.IsCritical
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(stepsTable).SetMap(set).
		Where(sq.Eq{"id": stepID, "sop_id": sopID}))
	if err != nil {
		return fmt.Errorf("failed to update sop step: %w", err)
	}
	return sqldb.RowsAffected(res, "sop step", stepID)
}

func (s *defaultStore) DeleteStep(ctx context.Context, sopID, stepID string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(stepsTable).Where(sq.Eq{"id": stepID, "sop_id": sopID}))
	if err != nil {
		return fmt.Errorf("failed to delete sop step: %w", err)
	}
	return sqldb.RowsAffected(res, "sop step", stepID)
}

func scanStep(r scanner) (*domain.SOPStep, error) {
	var step domain.SOPStep
	err := r.Scan(
		&step.ID, &step.SOPID, &step.StepNumber, &step.Title, &step.Description, &step.ExpectedDuration,
		&step.ResponsibleRole, &step.IsCritical, &step.CreatedAt, &step.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	step.CreatedAt = step.CreatedAt.UTC()
	step.UpdatedAt = step.UpdatedAt.UTC()
	return &step, nil
}

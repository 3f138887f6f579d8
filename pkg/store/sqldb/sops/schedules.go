package sops

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

func scheduleColumns(p string) []string {
	return []string{
		p + "id", p + "sop_id", p + "frequency", p + "next_execution_date",
		"COALESCE(" + p + "assigned_user_id, '')", p + "is_active", "COALESCE(" + p + "created_by, '')",
		p + "created_at", p + "updated_at",
	}
}

func (s *defaultStore) CreateSchedule(ctx context.Context, sch *domain.SOPSchedule) error {
	q := s.db.Builder().Insert(schedulesTable).
		Columns(
			"id", "sop_id", "frequency", "next_execution_date", "assigned_user_id", "is_active",
			"created_by", "created_at", "updated_at",
		).
		Values(
			sch.ID, sch.SOPID, string(sch.Frequency), domain.NormalizeTime(sch.NextExecutionDate),
			sqldb.NullString(sch.AssignedUserID), sch.IsActive, sqldb.NullString(sch.CreatedBy),
			sch.CreatedAt, sch.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert sop schedule: %w", err)
	}
	return nil
}

func (s *defaultStore) ListSchedules(ctx context.Context, sopID string) ([]domain.SOPSchedule, error) {
	return s.schedules(ctx, s.db.Builder().Select(scheduleColumns("")...).From(schedulesTable).
		Where(sq.Eq{"sop_id": sopID}).OrderBy("next_execution_date", "id"))
}

func (s *defaultStore) DeleteSchedule(ctx context.Context, sopID, scheduleID string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(schedulesTable).
		Where(sq.Eq{"id": scheduleID, "sop_id": sopID}))
	if err != nil {
		return fmt.Errorf("failed to delete sop schedule: %w", err)
	}
	return sqldb.RowsAffected(res, "sop schedule", scheduleID)
}

// DueSchedules returns active schedules of live SOPs due at or before now.
func (s *defaultStore) DueSchedules(ctx context.Context, now time.Time) ([]domain.SOPSchedule, error) {
	return s.schedules(ctx, s.db.Builder().Select(scheduleColumns("sch.")...).From(schedulesTable+" sch").
		Join(sopsTable+" s ON s.id = sch.sop_id").
		Where(sq.Eq{"sch.is_active": true, "s.deleted_at": nil}).
		Where(sq.LtOrEq{"sch.next_execution_date": domain.NormalizeTime(now)}).
		OrderBy("sch.next_execution_date", "sch.id"))
}

func (s *defaultStore) AdvanceSchedule(ctx context.Context, scheduleID string, next time.Time) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(schedulesTable).
		Set("next_execution_date", domain.NormalizeTime(next)).
		Set("updated_at", domain.Now()).
		Where(sq.Eq{"id": scheduleID}))
	if err != nil {
		return fmt.Errorf("failed to advance sop schedule: %w", err)
	}
	return sqldb.RowsAffected(res, "sop schedule", scheduleID)
}

func (s *defaultStore) CreateExecution(ctx context.Context, e *domain.SOPExecution) error {
	q := s.db.Builder().Insert(executionsTable).
		Columns("id", "sop_id", "schedule_id", "executed_by", "outcome", "notes", "executed_at").
		Values(
			e.ID, e.SOPID, sqldb.NullString(e.ScheduleID), sqldb.NullString(e.ExecutedBy), e.Outcome,
			sqldb.NullString(e.Notes), e.ExecutedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert sop execution: %w", err)
	}
	return nil
}

func (s *defaultStore) schedules(ctx context.Context, q sq.SelectBuilder) ([]domain.SOPSchedule, error) {
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query sop schedules: %w", err)
	}
	defer rows.Close()

	items := []domain.SOPSchedule{}
	for rows.Next() {
		var (
			sch       domain.SOPSchedule
			frequency string
		)
		if err := rows.Scan(
			&sch.ID, &sch.SOPID, &frequency, &sch.NextExecutionDate, &sch.AssignedUserID, &sch.IsActive,
			&sch.CreatedBy, &sch.CreatedAt, &sch.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sop schedule: %w", err)
		}
		sch.Frequency = domain.Frequency(frequency)
		sch.NextExecutionDate = sch.NextExecutionDate.UTC()
		sch.CreatedAt = sch.CreatedAt.UTC()
		sch.UpdatedAt = sch.UpdatedAt.UTC()
		items = append(items, sch)
	}
	return items, rows.Err()
}

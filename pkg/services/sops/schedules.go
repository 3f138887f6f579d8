package sops

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const scheduledOutcome = "scheduled"

func (s *service) CreateSchedule(ctx context.Context, sch *domain.SOPSchedule) (*domain.SOPSchedule, error) {
	if _, err := s.store.Get(ctx, sch.SOPID); err != nil {
		return nil, err
	}

	now := s.now()
	sch.ID = uuid.NewString()
	if sch.Frequency == "" {
		sch.Frequency = domain.FrequencyMonthly
	}
	if sch.NextExecutionDate.IsZero() {
		sch.NextExecutionDate = sch.Frequency.Next(now)
	}
	sch.NextExecutionDate = domain.NormalizeTime(sch.NextExecutionDate)
	sch.CreatedAt, sch.UpdatedAt = now, now
	if err := s.store.CreateSchedule(ctx, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

func (s *service) Schedules(ctx context.Context, sopID string) ([]domain.SOPSchedule, error) {
	if _, err := s.store.Get(ctx, sopID); err != nil {
		return nil, err
	}
	return s.store.ListSchedules(ctx, sopID)
}

func (s *service) DeleteSchedule(ctx context.Context, sopID, scheduleID string) error {
	return s.store.DeleteSchedule(ctx, sopID, scheduleID)
}

// RunDueSchedules records an execution for every due schedule and moves it to
// its next occurrence. Missed occurrences collapse into one execution.
func (s *service) RunDueSchedules(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)
	now := s.now()

	due, err := s.store.DueSchedules(ctx, now)
	if err != nil {
		return 0, err
	}

	var ran int
	for _, sch := range due {
		next := sch.Frequency.Next(sch.NextExecutionDate)
		for !next.After(now) {
			next = sch.Frequency.Next(next)
		}

		err := s.tx.InTx(ctx, func(ctx context.Context) error {
			if err := s.store.CreateExecution(ctx, &domain.SOPExecution{
				ID:         uuid.NewString(),
				SOPID:      sch.SOPID,
				ScheduleID: sch.ID,
				ExecutedBy: sch.AssignedUserID,
				Outcome:    scheduledOutcome,
				ExecutedAt: now,
			}); err != nil {
				return err
			}
			return s.store.AdvanceSchedule(ctx, sch.ID, next)
		})
		if err != nil {
			logger.Error().Err(err).Str("schedule_id", sch.ID).Msg("failed to run sop schedule")
			continue
		}
		ran++
	}

	if ran > 0 {
		logger.Info().Int("due", len(due)).Int("ran", ran).Msg("sop schedules executed")
	}
	return ran, nil
}

package sops

import (
	"context"

	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

// CreateStep adds a step, appending it after the last one when no step number is given.
func (s *service) CreateStep(ctx context.Context, step *domain.SOPStep) (*domain.SOPStep, error) {
	if _, err := s.store.Get(ctx, step.SOPID); err != nil {
		return nil, err
	}

	if step.StepNumber <= 0 {
		last, err := s.store.MaxStepNumber(ctx, step.SOPID)
		if err != nil {
			return nil, err
		}
		step.StepNumber = last + 1
	} else {
		taken, err := s.store.StepNumberTaken(ctx, step.SOPID, step.StepNumber, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflict("step %d already exists", step.StepNumber)
		}
	}

	now := s.now()
	step.ID = uuid.NewString()
	step.CreatedAt, step.UpdatedAt = now, now
	if err := s.store.CreateStep(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

func (s *service) Steps(ctx context.Context, sopID string) ([]domain.SOPStep, error) {
	if _, err := s.store.Get(ctx, sopID); err != nil {
		return nil, err
	}
	return s.store.ListSteps(ctx, sopID)
}

func (s *service) UpdateStep(ctx context.Context, sopID, stepID string, u domain.SOPStepUpdate) (*domain.SOPStep, error) {
	if u.StepNumber != nil {
		if *u.StepNumber <= 0 {
			return nil, domain.NewValidation("step_number", "must be positive")
		}
		taken, err := s.store.StepNumberTaken(ctx, sopID, *u.StepNumber, stepID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflict("step %d already exists", *u.StepNumber)
		}
	}
	if err := s.store.UpdateStep(ctx, sopID, stepID, u); err != nil {
		return nil, err
	}
	return s.store.GetStep(ctx, sopID, stepID)
}

func (s *service) DeleteStep(ctx context.Context, sopID, stepID string) error {
	return s.store.DeleteStep(ctx, sopID, stepID)
}

package sops

import (
	"context"

	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func (s *service) CreateFeedback(ctx context.Context, f *domain.SOPFeedback) (*domain.SOPFeedback, error) {
	if f.Rating < 1 || f.Rating > 5 {
		return nil, domain.NewValidation("rating", "must be between 1 and 5")
	}
	if _, err := s.store.Get(ctx, f.SOPID); err != nil {
		return nil, err
	}

	f.ID = uuid.NewString()
	f.CreatedAt = s.now()
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) Feedback(ctx context.Context, sopID string) ([]domain.SOPFeedback, error) {
	if _, err := s.store.Get(ctx, sopID); err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, sopID)
}

func (s *service) FeedbackSummary(ctx context.Context, sopID string) (domain.FeedbackSummary, error) {
	items, err := s.Feedback(ctx, sopID)
	if err != nil {
		return domain.FeedbackSummary{}, err
	}
	return Summarize(sopID, items), nil
}

// Summarize counts feedback per rating and averages the ratings.
func Summarize(sopID string, items []domain.SOPFeedback) domain.FeedbackSummary {
	summary := domain.FeedbackSummary{
		SOPID:        sopID,
		Count:        len(items),
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	var sum int
	for _, f := range items {
		summary.Distribution[f.Rating]++
		sum += f.Rating
	}
	if summary.Count > 0 {
		summary.AverageRating = domain.Round2(float64(sum) / float64(summary.Count))
	}
	return summary
}

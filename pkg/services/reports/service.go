package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/events"
	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/reports"
)

type Service interface {
	Generate(ctx context.Context, in domain.GenerateReportInput) (*domain.ComplianceReport, error)
	List(ctx context.Context, filter domain.ReportFilter) (domain.ListResult[domain.ComplianceReport], error)
	Get(ctx context.Context, id string) (*domain.ComplianceReport, error)
	Latest(ctx context.Context) (*domain.ComplianceReport, error)
	Dashboard(ctx context.Context) (*domain.ComplianceReport, error)
	Archive(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string) error
}

type service struct {
	store     reports.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(store reports.Store, publisher events.Publisher, m *metrics.Metrics) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{store: store, publisher: publisher, metrics: m, now: domain.Now}
}

// Generate computes and stores a compliance snapshot for the given period.
func (s *service) Generate(ctx context.Context, in domain.GenerateReportInput) (*domain.ComplianceReport, error) {
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return nil, domain.NewValidation("period", "period_start_date and period_end_date are required")
	}
	if in.PeriodStart.After(in.PeriodEnd) {
		return nil, domain.NewValidation("period_start_date", "must not be after period_end_date")
	}
	if in.Period == "" {
		in.Period = domain.PeriodCustom
	}
	if in.Name == "" {
		in.Name = defaultName(in.PeriodStart)
	}

	policyCounts, err := s.store.PolicyCounts(ctx, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}
	mappings, err := s.store.MappingStatuses(ctx, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}
	controlCount, err := s.store.ControlCount(ctx)
	if err != nil {
		return nil, err
	}
	domainCounts, err := s.store.DomainCounts(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := s.store.PriorScores(ctx, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := &domain.ComplianceReport{
		ID:              uuid.NewString(),
		ReportName:      in.Name,
		ReportPeriod:    in.Period,
		PeriodStart:     in.PeriodStart,
		PeriodEnd:       in.PeriodEnd,
		Policies:        PolicyScore(policyCounts),
		Controls:        ControlScore(mappings, controlCount),
		Assets:          AssetScore(mappings),
		DomainBreakdown: DomainBreakdown(domainCounts),
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
		GeneratedAt:     now,
	}
	r.OverallScore = OverallScore(r.Policies.Score, r.Controls.Score, r.Assets.Score)
	r.Rating = domain.RatingFor(r.OverallScore)
	r.GapDetails = Gaps(r.Policies, r.Controls, r.Assets)
	r.CriticalGaps, r.MediumGaps, r.LowGaps = CountGaps(r.GapDetails)
	r.Trend = append(prior, domain.TrendPoint{Date: in.PeriodEnd, Score: r.OverallScore})
	r.TrendDirection, r.ProjectedScore, r.ProjectedDaysToExcellent = Forecast(r.Trend)
	summarize(r)

	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.metrics.RecordReport(string(r.Rating))
	zerolog.Ctx(ctx).Info().
		Str("report_id", r.ID).
		Float64("overall_score", r.OverallScore).
		Str("rating", string(r.Rating)).
		Msg("compliance report generated")

	if err := s.publisher.Publish(ctx, events.SubjectReport+".generated", map[string]any{
		"report_id":     r.ID,
		"overall_score": r.OverallScore,
		"rating":        r.Rating,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("report_id", r.ID).Msg("failed to publish report event")
	}
	return s.store.Get(ctx, r.ID)
}

func (s *service) List(ctx context.Context, filter domain.ReportFilter) (domain.ListResult[domain.ComplianceReport], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	return s.store.Get(ctx, id)
}

func (s *service) Latest(ctx context.Context) (*domain.ComplianceReport, error) {
	return s.store.Latest(ctx)
}

// Dashboard returns the latest non-archived report.
func (s *service) Dashboard(ctx context.Context) (*domain.ComplianceReport, error) {
	r, err := s.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("no compliance reports available: %w", err)
	}
	return r, nil
}

func (s *service) Archive(ctx context.Context, id string) error {
	if err := s.store.Archive(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("report_id", id).Msg("compliance report archived")
	return nil
}

func (s *service) Finalize(ctx context.Context, id string) error {
	return s.store.Finalize(ctx, id)
}

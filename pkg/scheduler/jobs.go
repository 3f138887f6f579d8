package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const (
	JobAuditCleanup     = "audit-cleanup"
	JobComplianceReport = "compliance-report"
	JobSOPSchedules     = "sop-schedules"
	JobExceptionExpiry  = "exception-expiry"
)

type AuditCleaner interface {
	Cleanup(ctx context.Context, retentionDays int) (int, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, in domain.GenerateReportInput) (*domain.ComplianceReport, error)
}

type ScheduleRunner interface {
	RunDueSchedules(ctx context.Context) (int, error)
}

type ExceptionExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

type Settings struct {
	AuditRetentionDays   int
	AuditCleanupSchedule string
	ReportSchedule       string
	ReportPeriod         domain.ReportPeriod
	SweepSchedule        string
}

type Dependencies struct {
	Audit      AuditCleaner
	Reports    ReportGenerator
	SOPs       ScheduleRunner
	Exceptions ExceptionExpirer
	Now        func() time.Time
}

// Jobs builds the maintenance jobs for settings.
func Jobs(settings Settings, deps Dependencies) []Job {
	now := deps.Now
	if now == nil {
		now = domain.Now
	}
	return []Job{
		{
			Name:     JobAuditCleanup,
			Schedule: settings.AuditCleanupSchedule,
			Run: func(ctx context.Context) error {
				n, err := deps.Audit.Cleanup(ctx, settings.AuditRetentionDays)
				if err == nil {
					zerolog.Ctx(ctx).Info().Int("deleted", n).Msg("audit retention cleanup finished")
				}
				return err
			},
		},
		{
			Name:     JobComplianceReport,
			Schedule: settings.ReportSchedule,
			Run: func(ctx context.Context) error {
				start, end := TrailingWindow(settings.ReportPeriod, now())
				_, err := deps.Reports.Generate(ctx, domain.GenerateReportInput{
					Period:      settings.ReportPeriod,
					PeriodStart: start,
					PeriodEnd:   end,
					CreatedBy:   "scheduler",
				})
				return err
			},
		},
		{
			Name:     JobSOPSchedules,
			Schedule: settings.SweepSchedule,
			Run: func(ctx context.Context) error {
				n, err := deps.SOPs.RunDueSchedules(ctx)
				if err == nil && n > 0 {
					zerolog.Ctx(ctx).Info().Int("executions", n).Msg("due sop schedules recorded")
				}
				return err
			},
		},
		{
			Name:     JobExceptionExpiry,
			Schedule: settings.SweepSchedule,
			Run: func(ctx context.Context) error {
				n, err := deps.Exceptions.ExpireDue(ctx)
				if err == nil && n > 0 {
					zerolog.Ctx(ctx).Info().Int("expired", n).Msg("policy exceptions expired")
				}
				return err
			},
		},
	}
}

// TrailingWindow returns the period that ends at the start of now's day.
// Custom and unknown periods cover one month.
func TrailingWindow(period domain.ReportPeriod, now time.Time) (time.Time, time.Time) {
	end := now.UTC().Truncate(24 * time.Hour)
	switch period {
	case domain.PeriodWeekly:
		return end.AddDate(0, 0, -7), end
	case domain.PeriodQuarterly:
		return end.AddDate(0, -3, 0), end
	case domain.PeriodAnnual:
		return end.AddDate(-1, 0, 0), end
	default:
		return end.AddDate(0, -1, 0), end
	}
}

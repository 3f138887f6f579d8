package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "compliance_reports"

var columns = []string{
	"id", "report_name", "report_period", "period_start_date", "period_end_date",
	"overall_compliance_score", "overall_compliance_rating", "policies_score", "controls_score",
	"assets_score", "total_policies", "published_policies", "acknowledged_policies",
	"policy_acknowledgment_rate", "total_controls", "implemented_controls", "partial_controls",
	"not_implemented_controls", "average_control_effectiveness", "total_assets", "compliant_assets",
	"asset_compliance_percentage", "critical_gaps", "medium_gaps", "low_gaps", "gap_details",
	"domain_breakdown", "compliance_trend", "projected_score_next_period", "projected_days_to_excellent",
	"trend_direction", "executive_summary", "key_findings", "recommendations", "is_final", "is_archived",
	"created_by", "created_at", "generated_at",
}

type Store interface {
	Create(ctx context.Context, r *domain.ComplianceReport) error
	Get(ctx context.Context, id string) (*domain.ComplianceReport, error)
	List(ctx context.Context, filter domain.ReportFilter) (domain.ListResult[domain.ComplianceReport], error)
	Latest(ctx context.Context) (*domain.ComplianceReport, error)
	Archive(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string) error
	PriorScores(ctx context.Context, from, to time.Time) ([]domain.TrendPoint, error)

	PolicyCounts(ctx context.Context, start, end time.Time) (domain.PolicyCounts, error)
	MappingStatuses(ctx context.Context, start, end time.Time) ([]domain.MappingStatus, error)
	ControlCount(ctx context.Context) (int, error)
	DomainCounts(ctx context.Context) ([]domain.DomainCounts, error)
}

type defaultStore struct {
	db *sqldb.DB
}

func NewStore(db *sqldb.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Create(ctx context.Context, r *domain.ComplianceReport) error {
	row := adapters.MapDomainReportToStore(r)
	q := s.db.Builder().Insert(table).Columns(columns...).Values(
		row.ID, row.ReportName, row.ReportPeriod, row.PeriodStartDate, row.PeriodEndDate,
		row.OverallComplianceScore, row.OverallComplianceRating, row.PoliciesScore, row.ControlsScore,
		row.AssetsScore, row.TotalPolicies, row.PublishedPolicies, row.AcknowledgedPolicies,
		row.PolicyAcknowledgmentRate, row.TotalControls, row.ImplementedControls, row.PartialControls,
		row.NotImplementedControls, row.AverageControlEffectiveness, row.TotalAssets, row.CompliantAssets,
		row.AssetCompliancePercentage, row.CriticalGaps, row.MediumGaps, row.LowGaps, row.GapDetails,
		row.DomainBreakdown, row.ComplianceTrend, row.ProjectedScoreNextPeriod, row.ProjectedDaysToExcellent,
		row.TrendDirection, row.ExecutiveSummary, row.KeyFindings, row.Recommendations, row.IsFinal,
		row.IsArchived, row.CreatedBy, row.CreatedAt, row.GeneratedAt,
	)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert compliance report: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	return s.one(ctx, s.db.Builder().Select(columns...).From(table).Where(sq.Eq{"id": id}), id)
}

func (s *defaultStore) Latest(ctx context.Context) (*domain.ComplianceReport, error) {
	return s.one(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"is_archived": false}).
		OrderBy("generated_at DESC", "id DESC").
		Limit(1), "latest")
}

func (s *defaultStore) one(ctx context.Context, q sq.SelectBuilder, id string) (*domain.ComplianceReport, error) {
	row, err := s.db.SelectRow(ctx, q)
	if err != nil {
		return nil, err
	}
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("compliance report", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance report: %w", err)
	}
	return r, nil
}

func applyFilter(b sq.SelectBuilder, f domain.ReportFilter) sq.SelectBuilder {
	if f.Period != "" {
		b = b.Where(sq.Eq{"report_period": string(f.Period)})
	}
	if f.StartDate != nil {
		b = b.Where(sq.GtOrEq{"period_start_date": domain.NormalizeTime(*f.StartDate)})
	}
	if f.EndDate != nil {
		b = b.Where(sq.LtOrEq{"period_end_date": domain.NormalizeTime(*f.EndDate)})
	}
	if f.Rating != "" {
		b = b.Where(sq.Eq{"overall_compliance_rating": string(f.Rating)})
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.ReportFilter) (domain.ListResult[domain.ComplianceReport], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.ComplianceReport]{Page: page, Items: []domain.ComplianceReport{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy("generated_at DESC", "id DESC")
	rows, err := s.db.Select(ctx, sqldb.Paginate(q, page))
	if err != nil {
		return result, fmt.Errorf("failed to query compliance reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan compliance report: %w", err)
		}
		result.Items = append(result.Items, *r)
	}
	return result, rows.Err()
}

func (s *defaultStore) Archive(ctx context.Context, id string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).Set("is_archived", true).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to archive compliance report: %w", err)
	}
	return sqldb.RowsAffected(res, "compliance report", id)
}

func (s *defaultStore) Finalize(ctx context.Context, id string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).Set("is_final", true).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to finalize compliance report: %w", err)
	}
	return sqldb.RowsAffected(res, "compliance report", id)
}

// PriorScores returns scores of non-archived reports whose period ends within [from, to], oldest first.
func (s *defaultStore) PriorScores(ctx context.Context, from, to time.Time) ([]domain.TrendPoint, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select("period_end_date", "overall_compliance_score").
		From(table).
		Where(sq.Eq{"is_archived": false}).
		Where(sq.GtOrEq{"period_end_date": domain.NormalizeTime(from)}).
		Where(sq.LtOrEq{"period_end_date": domain.NormalizeTime(to)}).
		OrderBy("period_end_date", "generated_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to query prior reports: %w", err)
	}
	defer rows.Close()

	points := []domain.TrendPoint{}
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Date, &p.Score); err != nil {
			return nil, fmt.Errorf("failed to scan prior report: %w", err)
		}
		p.Date = p.Date.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *defaultStore) PolicyCounts(ctx context.Context, start, end time.Time) (domain.PolicyCounts, error) {
	var counts domain.PolicyCounts
	q := s.db.Builder().
		Select(
			"COUNT(*)",
			"COALESCE(SUM(CASE WHEN p.status = 'published' THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(CASE WHEN EXISTS (SELECT 1 FROM policy_acknowledgments a WHERE a.policy_id = p.id) THEN 1 ELSE 0 END), 0)",
		).
		From("policies p").
		Where(sq.Eq{"p.deleted_at": nil}).
		Where(sq.GtOrEq{"p.created_at": domain.NormalizeTime(start)}).
		Where(sq.LtOrEq{"p.created_at": domain.NormalizeTime(end)})
	row, err := s.db.SelectRow(ctx, q)
	if err != nil {
		return counts, err
	}
	if err := row.Scan(&counts.Total, &counts.Published, &counts.Acknowledged); err != nil {
		return counts, fmt.Errorf("failed to count policies: %w", err)
	}
	return counts, nil
}

func (s *defaultStore) MappingStatuses(ctx context.Context, start, end time.Time) ([]domain.MappingStatus, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().
		Select("control_id", "asset_type", "asset_id", "implementation_status", "effectiveness_score").
		From("control_asset_mappings").
		Where(sq.GtOrEq{"mapped_at": domain.NormalizeTime(start)}).
		Where(sq.LtOrEq{"mapped_at": domain.NormalizeTime(end)}).
		OrderBy("asset_type", "asset_id", "control_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping statuses: %w", err)
	}
	defer rows.Close()

	items := []domain.MappingStatus{}
	for rows.Next() {
		var (
			m domain.MappingStatus
			assetType, status string
			score sql.NullFloat64
		)
		if err := rows.Scan(&m.ControlID, &assetType, &m.AssetID, &status, &score); err != nil {
			return nil, fmt.Errorf("failed to scan mapping status: %w", err)
		}
		m.AssetType = domain.AssetType(assetType)
		m.ImplementationStatus = domain.ImplementationStatus(status)
		m.EffectivenessScore = sqldb.FloatPtr(score)
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *defaultStore) ControlCount(ctx context.Context) (int, error) {
	return s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From("unified_controls").Where(sqldb.NotDeleted))
}

// DomainCounts aggregates live controls and their asset mappings per active domain.
func (s *defaultStore) DomainCounts(ctx context.Context) ([]domain.DomainCounts, error) {
	q := s.db.Builder().
		Select(
			"d.id", "d.name", "COUNT(DISTINCT c.id)", "COUNT(m.id)",
			"COALESCE(SUM(CASE WHEN m.implementation_status = 'implemented' THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(CASE WHEN m.implementation_status = 'in_progress' THEN 1 ELSE 0 END), 0)",
		).
		From("control_domains d").
		LeftJoin("unified_controls c ON c.domain_id = d.id AND c.deleted_at IS NULL").
		LeftJoin("control_asset_mappings m ON m.control_id = c.id").
		Where(sq.Eq{"d.deleted_at": nil, "d.is_active": true}).
		GroupBy("d.id", "d.name", "d.display_order").
		OrderBy("d.display_order", "d.name")

	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain counts: %w", err)
	}
	defer rows.Close()

	items := []domain.DomainCounts{}
	for rows.Next() {
		var d domain.DomainCounts
		if err := rows.Scan(&d.DomainID, &d.DomainName, &d.Controls, &d.Mappings, &d.Implemented, &d.InProgress); err != nil {
			return nil, fmt.Errorf("failed to scan domain counts: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.ComplianceReport, error) {
	var row store.ComplianceReport
	err := r.Scan(
		&row.ID, &row.ReportName, &row.ReportPeriod, &row.PeriodStartDate, &row.PeriodEndDate,
		&row.OverallComplianceScore, &row.OverallComplianceRating, &row.PoliciesScore, &row.ControlsScore,
		&row.AssetsScore, &row.TotalPolicies, &row.PublishedPolicies, &row.AcknowledgedPolicies,
		&row.PolicyAcknowledgmentRate, &row.TotalControls, &row.ImplementedControls, &row.PartialControls,
		&row.NotImplementedControls, &row.AverageControlEffectiveness, &row.TotalAssets, &row.CompliantAssets,
		&row.AssetCompliancePercentage, &row.CriticalGaps, &row.MediumGaps, &row.LowGaps, &row.GapDetails,
		&row.DomainBreakdown, &row.ComplianceTrend, &row.ProjectedScoreNextPeriod, &row.ProjectedDaysToExcellent,
		&row.TrendDirection, &row.ExecutiveSummary, &row.KeyFindings, &row.Recommendations, &row.IsFinal,
		&row.IsArchived, &row.CreatedBy, &row.CreatedAt, &row.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreReportToDomain(&row), nil
}

package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
)

type storedGap struct {
	Area        string `json:"area"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type storedTrendPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

type storedDomainScore struct {
	DomainID    string  `json:"domain_id"`
	DomainName  string  `json:"domain_name"`
	Controls    int     `json:"controls"`
	Mappings    int     `json:"mappings"`
	Implemented int     `json:"implemented"`
	Score       float64 `json:"score"`
	Rating      string  `json:"rating"`
}

const trendDateLayout = "2006-01-02T15:04:05Z07:00"

func MapDomainReportToStore(r *domain.ComplianceReport) *store.ComplianceReport {
	gaps := make([]storedGap, 0, len(r.GapDetails))
	for _, g := range r.GapDetails {
		gaps = append(gaps, storedGap{Area: g.Area, Severity: string(g.Severity), Description: g.Description})
	}
	trend := make([]storedTrendPoint, 0, len(r.Trend))
	for _, p := range r.Trend {
		trend = append(trend, storedTrendPoint{Date: p.Date.UTC().Format(trendDateLayout), Score: p.Score})
	}
	domains := make([]storedDomainScore, 0, len(r.DomainBreakdown))
	for _, d := range r.DomainBreakdown {
		domains = append(domains, storedDomainScore{
			DomainID:    d.DomainID,
			DomainName:  d.DomainName,
			Controls:    d.Controls,
			Mappings:    d.Mappings,
			Implemented: d.Implemented,
			Score:       d.Score,
			Rating:      string(d.Rating),
		})
	}

	return &store.ComplianceReport{
		ID:                          r.ID,
		ReportName:                  r.ReportName,
		ReportPeriod:                string(r.ReportPeriod),
		PeriodStartDate:             r.PeriodStart,
		PeriodEndDate:               r.PeriodEnd,
		OverallComplianceScore:      r.OverallScore,
		OverallComplianceRating:     string(r.Rating),
		PoliciesScore:               r.Policies.Score,
		ControlsScore:               r.Controls.Score,
		AssetsScore:                 r.Assets.Score,
		TotalPolicies:               r.Policies.Total,
		PublishedPolicies:           r.Policies.Published,
		AcknowledgedPolicies:        r.Policies.Acknowledged,
		PolicyAcknowledgmentRate:    r.Policies.AcknowledgmentRate,
		TotalControls:               r.Controls.Total,
		ImplementedControls:         r.Controls.Implemented,
		PartialControls:             r.Controls.Partial,
		NotImplementedControls:      r.Controls.NotImplemented,
		AverageControlEffectiveness: r.Controls.AverageEffectiveness,
		TotalAssets:                 r.Assets.Total,
		CompliantAssets:             r.Assets.Compliant,
		AssetCompliancePercentage:   r.Assets.Percentage,
		CriticalGaps:                r.CriticalGaps,
		MediumGaps:                  r.MediumGaps,
		LowGaps:                     r.LowGaps,
		GapDetails:                  toNullJSON(gaps),
		DomainBreakdown:             toNullJSON(domains),
		ComplianceTrend:             toNullJSON(trend),
		ProjectedScoreNextPeriod:    r.ProjectedScore,
		ProjectedDaysToExcellent:    r.ProjectedDaysToExcellent,
		TrendDirection:              string(r.TrendDirection),
		ExecutiveSummary:            toNullString(r.ExecutiveSummary),
		KeyFindings:                 toNullJSON(r.KeyFindings),
		Recommendations:             toNullJSON(r.Recommendations),
		IsFinal:                     r.IsFinal,
		IsArchived:                  r.IsArchived,
		CreatedBy:                   toNullString(r.CreatedBy),
		CreatedAt:                   r.CreatedAt,
		GeneratedAt:                 r.GeneratedAt,
	}
}

func MapStoreReportToDomain(s *store.ComplianceReport) *domain.ComplianceReport {
	if s == nil {
		return nil
	}
	r := &domain.ComplianceReport{
		ID:           s.ID,
		ReportName:   s.ReportName,
		ReportPeriod: domain.ReportPeriod(s.ReportPeriod),
		PeriodStart:  s.PeriodStartDate.UTC(),
		PeriodEnd:    s.PeriodEndDate.UTC(),
		OverallScore: s.OverallComplianceScore,
		Rating:       domain.ComplianceRating(s.OverallComplianceRating),
		Policies: domain.PolicyMetrics{
			Total:              s.TotalPolicies,
			Published:          s.PublishedPolicies,
			Acknowledged:       s.AcknowledgedPolicies,
			AcknowledgmentRate: s.PolicyAcknowledgmentRate,
			Score:              s.PoliciesScore,
		},
		Controls: domain.ControlMetrics{
			Total:                s.TotalControls,
			Implemented:          s.ImplementedControls,
			Partial:              s.PartialControls,
			NotImplemented:       s.NotImplementedControls,
			AverageEffectiveness: s.AverageControlEffectiveness,
			Score:                s.ControlsScore,
		},
		Assets: domain.AssetMetrics{
			Total:      s.TotalAssets,
			Compliant:  s.CompliantAssets,
			Percentage: s.AssetCompliancePercentage,
			Score:      s.AssetsScore,
		},
		CriticalGaps:             s.CriticalGaps,
		MediumGaps:               s.MediumGaps,
		LowGaps:                  s.LowGaps,
		ProjectedScore:           s.ProjectedScoreNextPeriod,
		ProjectedDaysToExcellent: s.ProjectedDaysToExcellent,
		TrendDirection:           domain.TrendDirection(s.TrendDirection),
		ExecutiveSummary:         s.ExecutiveSummary.String,
		IsFinal:                  s.IsFinal,
		IsArchived:               s.IsArchived,
		CreatedBy:                s.CreatedBy.String,
		CreatedAt:                s.CreatedAt.UTC(),
		GeneratedAt:              s.GeneratedAt.UTC(),
	}

	var gaps []storedGap
	fromNullJSON(s.GapDetails, &gaps)
	for _, g := range gaps {
		r.GapDetails = append(r.GapDetails, domain.Gap{
			Area:        g.Area,
			Severity:    domain.GapSeverity(g.Severity),
			Description: g.Description,
		})
	}

	var trend []storedTrendPoint
	fromNullJSON(s.ComplianceTrend, &trend)
	for _, p := range trend {
		t, err := parseTrendDate(p.Date)
		if err != nil {
			continue
		}
		r.Trend = append(r.Trend, domain.TrendPoint{Date: t, Score: p.Score})
	}

	var domains []storedDomainScore
	fromNullJSON(s.DomainBreakdown, &domains)
	for _, d := range domains {
		r.DomainBreakdown = append(r.DomainBreakdown, domain.DomainScore{
			DomainID:    d.DomainID,
			DomainName:  d.DomainName,
			Controls:    d.Controls,
			Mappings:    d.Mappings,
			Implemented: d.Implemented,
			Score:       d.Score,
			Rating:      domain.ComplianceRating(d.Rating),
		})
	}

	fromNullJSON(s.KeyFindings, &r.KeyFindings)
	fromNullJSON(s.Recommendations, &r.Recommendations)
	return r
}

func MapDomainReportToApi(r domain.ComplianceReport) api.ComplianceReport {
	out := api.ComplianceReport{
		ID:                          r.ID,
		ReportName:                  r.ReportName,
		ReportPeriod:                string(r.ReportPeriod),
		PeriodStartDate:             r.PeriodStart,
		PeriodEndDate:               r.PeriodEnd,
		OverallComplianceScore:      r.OverallScore,
		OverallComplianceRating:     string(r.Rating),
		PoliciesScore:               r.Policies.Score,
		ControlsScore:               r.Controls.Score,
		AssetsScore:                 r.Assets.Score,
		TotalPolicies:               r.Policies.Total,
		PublishedPolicies:           r.Policies.Published,
		AcknowledgedPolicies:        r.Policies.Acknowledged,
		PolicyAcknowledgmentRate:    r.Policies.AcknowledgmentRate,
		TotalControls:               r.Controls.Total,
		ImplementedControls:         r.Controls.Implemented,
		PartialControls:             r.Controls.Partial,
		NotImplementedControls:      r.Controls.NotImplemented,
		AverageControlEffectiveness: r.Controls.AverageEffectiveness,
		TotalAssets:                 r.Assets.Total,
		CompliantAssets:             r.Assets.Compliant,
		AssetCompliancePercentage:   r.Assets.Percentage,
		CriticalGaps:                r.CriticalGaps,
		MediumGaps:                  r.MediumGaps,
		LowGaps:                     r.LowGaps,
		GapDetails:                  make([]api.Gap, 0, len(r.GapDetails)),
		DomainBreakdown:             mapDomainScores(r.DomainBreakdown),
		ComplianceTrend:             mapTrend(r.Trend),
		ProjectedScoreNextPeriod:    r.ProjectedScore,
		ProjectedDaysToExcellent:    r.ProjectedDaysToExcellent,
		TrendDirection:              string(r.TrendDirection),
		ExecutiveSummary:            r.ExecutiveSummary,
		KeyFindings:                 strs(r.KeyFindings),
		Recommendations:             strs(r.Recommendations),
		IsFinal:                     r.IsFinal,
		IsArchived:                  r.IsArchived,
		CreatedBy:                   r.CreatedBy,
		CreatedAt:                   r.CreatedAt,
		GeneratedAt:                 r.GeneratedAt,
	}
	for _, g := range r.GapDetails {
		out.GapDetails = append(out.GapDetails, api.Gap{
			Area:        g.Area,
			Severity:    string(g.Severity),
			Description: g.Description,
		})
	}
	return out
}

func MapDomainReportToDashboard(r domain.ComplianceReport) api.ReportDashboard {
	return api.ReportDashboard{
		ReportID:       r.ID,
		GeneratedAt:    r.GeneratedAt,
		OverallScore:   r.OverallScore,
		Rating:         string(r.Rating),
		PoliciesScore:  r.Policies.Score,
		ControlsScore:  r.Controls.Score,
		AssetsScore:    r.Assets.Score,
		CriticalGaps:   r.CriticalGaps,
		TrendDirection: string(r.TrendDirection),
		Trend:          mapTrend(r.Trend),
		Domains:        mapDomainScores(r.DomainBreakdown),
	}
}

func mapTrend(points []domain.TrendPoint) []api.TrendPoint {
	out := make([]api.TrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, api.TrendPoint{Date: p.Date, Score: p.Score})
	}
	return out
}

func mapDomainScores(scores []domain.DomainScore) []api.DomainScore {
	out := make([]api.DomainScore, 0, len(scores))
	for _, d := range scores {
		out = append(out, api.DomainScore{
			DomainID:    d.DomainID,
			DomainName:  d.DomainName,
			Controls:    d.Controls,
			Mappings:    d.Mappings,
			Implemented: d.Implemented,
			Score:       d.Score,
			Rating:      string(d.Rating),
		})
	}
	return out
}

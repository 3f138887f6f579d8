package reports

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const (
	weightPolicies = 0.3
	weightControls = 0.5
	weightAssets   = 0.2

	compliantAssetScore = 80
	excellentScore      = 85
	trendThreshold      = 2
)

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func PolicyScore(c domain.PolicyCounts) domain.PolicyMetrics {
	m := domain.PolicyMetrics{Total: c.Total, Published: c.Published, Acknowledged: c.Acknowledged}
	if c.Total == 0 {
		return m
	}
	total := float64(c.Total)
	m.AcknowledgmentRate = domain.Round2(float64(c.Acknowledged) / total * 100)
	m.Score = domain.Round2(clamp(50*float64(c.Published)/total + 50*float64(c.Acknowledged)/total))
	return m
}

// ControlScore scores the period's control mappings. With no mappings the
// total falls back to the number of controls.
func ControlScore(mappings []domain.MappingStatus, controlCount int) domain.ControlMetrics {
	var (
		m      domain.ControlMetrics
		effSum float64
		effN   int
	)
	for _, mp := range mappings {
		switch mp.ImplementationStatus {
		case domain.ImplImplemented:
			m.Implemented++
		case domain.ImplInProgress:
			m.Partial++
		case domain.ImplNotImplemented:
			m.NotImplemented++
		}
		if mp.EffectivenessScore != nil {
			effSum += *mp.EffectivenessScore
			effN++
		}
	}
	m.Total = len(mappings)
	if m.Total == 0 {
		m.Total = controlCount
	}
	if effN > 0 {
		m.AverageEffectiveness = domain.Round2(effSum / float64(effN))
	}
	if m.Total == 0 {
		return m
	}
	total := float64(m.Total)
	m.Score = domain.Round2(clamp((float64(m.Implemented)/total*100 + float64(m.Partial)/total*50) / 2))
	return m
}

// AssetScore groups mappings per asset. An asset is compliant when its
// score reaches 80.
func AssetScore(mappings []domain.MappingStatus) domain.AssetMetrics {
	type tally struct{ n, implemented, partial int }
	byAsset := map[string]*tally{}
	var order []string
	for _, mp := range mappings {
		key := string(mp.AssetType) + "/" + mp.AssetID
		t, ok := byAsset[key]
		if !ok {
			t = &tally{}
			byAsset[key] = t
			order = append(order, key)
		}
		t.n++
		switch mp.ImplementationStatus {
		case domain.ImplImplemented:
			t.implemented++
		case domain.ImplInProgress:
			t.partial++
		}
	}

	m := domain.AssetMetrics{Total: len(order)}
	if m.Total == 0 {
		return m
	}
	var sum float64
	for _, key := range order {
		t := byAsset[key]
		score := (float64(t.implemented)*100 + float64(t.partial)*50) / float64(t.n)
		sum += score
		if score >= compliantAssetScore {
			m.Compliant++
		}
	}
	m.Score = domain.Round2(clamp(sum / float64(m.Total)))
	m.Percentage = domain.Round2(float64(m.Compliant) / float64(m.Total) * 100)
	return m
}

func OverallScore(policies, controls, assets float64) float64 {
	return domain.Round2(clamp(policies*weightPolicies + controls*weightControls + assets*weightAssets))
}

func Gaps(p domain.PolicyMetrics, c domain.ControlMetrics, a domain.AssetMetrics) []domain.Gap {
	gaps := []domain.Gap{}
	if p.Total > 0 && p.AcknowledgmentRate < 50 {
		gaps = append(gaps, domain.Gap{
			Area:        "policies",
			Severity:    domain.GapCritical,
			Description: fmt.Sprintf("Low policy acknowledgment rate (%.1f%%)", p.AcknowledgmentRate),
		})
	}
	if c.Total > 0 && float64(c.NotImplemented)/float64(c.Total) > 0.2 {
		gaps = append(gaps, domain.Gap{
			Area:        "controls",
			Severity:    domain.GapCritical,
			Description: fmt.Sprintf("High number of unimplemented controls (%d/%d)", c.NotImplemented, c.Total),
		})
	}
	if a.Total > 0 && a.Percentage < 70 {
		gaps = append(gaps, domain.Gap{
			Area:        "assets",
			Severity:    domain.GapMedium,
			Description: fmt.Sprintf("Asset compliance below target (%.1f%%)", a.Percentage),
		})
	}
	return gaps
}

func CountGaps(gaps []domain.Gap) (critical, medium, low int) {
	for _, g := range gaps {
		switch g.Severity {
		case domain.GapCritical:
			critical++
		case domain.GapMedium:
			medium++
		default:
			low++
		}
	}
	return critical, medium, low
}

// Forecast derives the trend direction and projection from points ordered
// oldest first.
func Forecast(points []domain.TrendPoint) (domain.TrendDirection, float64, int) {
	if len(points) == 0 {
		return domain.TrendStable, 0, 0
	}
	first, last := points[0].Score, points[len(points)-1].Score

	direction := domain.TrendStable
	switch {
	case last > first+trendThreshold:
		direction = domain.TrendImproving
	case last < first-trendThreshold:
		direction = domain.TrendDeclining
	}

	days := 0
	if last < excellentScore {
		days = int(math.Ceil((excellentScore - last) * 10))
	}
	return direction, last, days
}

func DomainBreakdown(counts []domain.DomainCounts) []domain.DomainScore {
	out := make([]domain.DomainScore, 0, len(counts))
	for _, c := range counts {
		d := domain.DomainScore{
			DomainID:    c.DomainID,
			DomainName:  c.DomainName,
			Controls:    c.Controls,
			Mappings:    c.Mappings,
			Implemented: c.Implemented,
		}
		if c.Mappings > 0 {
			n := float64(c.Mappings)
			d.Score = domain.Round2(clamp(float64(c.Implemented)/n*100 + float64(c.InProgress)/n*50))
		}
		d.Rating = domain.RatingFor(d.Score)
		out = append(out, d)
	}
	return out
}

func summarize(r *domain.ComplianceReport) {
	r.ExecutiveSummary = fmt.Sprintf(
		"Organization-wide compliance score: %.1f%% (%s). %d critical gaps identified requiring immediate attention.",
		r.OverallScore, r.Rating, r.CriticalGaps)
	r.KeyFindings = []string{
		fmt.Sprintf("Policy compliance: %.1f%%", r.Policies.Score),
		fmt.Sprintf("Control implementation: %.1f%%", r.Controls.Score),
		fmt.Sprintf("Asset compliance: %.1f%%", r.Assets.Score),
	}
	if r.CriticalGaps == 0 {
		r.Recommendations = []string{"Continue current compliance initiatives."}
		return
	}
	r.Recommendations = make([]string, 0, len(r.GapDetails))
	for _, g := range r.GapDetails {
		r.Recommendations = append(r.Recommendations, "Address: "+strings.ToLower(g.Description[:1])+g.Description[1:])
	}
}

func defaultName(start time.Time) string {
	return "Compliance Report - " + start.Format(time.DateOnly)
}

package assetcontrol

import "github.com/de-tools/grc-admin/pkg/models/domain"

func emptyBreakdown() map[domain.ImplementationStatus]int {
	b := make(map[domain.ImplementationStatus]int, len(domain.ImplementationStatuses))
	for _, st := range domain.ImplementationStatuses {
		b[st] = 0
	}
	return b
}

// Compliance scores one asset over its mappings. Not-applicable mappings are
// excluded from the denominator.
func Compliance(asset domain.AssetRef, mappings []domain.ControlAssetMapping) domain.AssetCompliance {
	c := domain.AssetCompliance{
		Asset:         asset,
		TotalControls: len(mappings),
		Breakdown:     emptyBreakdown(),
	}
	for _, m := range mappings {
		c.Breakdown[m.ImplementationStatus]++
	}
	c.ImplementedControls = c.Breakdown[domain.ImplImplemented]

	applicable := c.TotalControls - c.Breakdown[domain.ImplNotApplicable]
	if applicable > 0 {
		c.CompliancePercentage = domain.Round2(float64(c.ImplementedControls) / float64(applicable) * 100)
	}
	return c
}

// Effectiveness averages the scored mappings of one control.
func Effectiveness(controlID string, mappings []domain.ControlAssetMapping) domain.ControlEffectiveness {
	e := domain.ControlEffectiveness{
		ControlID:   controlID,
		TotalAssets: len(mappings),
		Breakdown:   emptyBreakdown(),
	}
	var sum float64
	var scored int
	for _, m := range mappings {
		e.Breakdown[m.ImplementationStatus]++
		if m.EffectivenessScore != nil {
			sum += *m.EffectivenessScore
			scored++
		}
	}
	if scored > 0 {
		e.AverageEffectiveness = domain.Round2(sum / float64(scored))
	}
	return e
}

// ByAssetType turns per-type totals and implemented counts into percentages,
// one entry per known asset type.
func ByAssetType(totals, implemented map[string]int) []domain.AssetTypeCompliance {
	out := make([]domain.AssetTypeCompliance, 0, len(domain.AssetTypes))
	for _, t := range domain.AssetTypes {
		row := domain.AssetTypeCompliance{
			AssetType:   t,
			Total:       totals[string(t)],
			Implemented: implemented[string(t)],
		}
		if row.Total > 0 {
			row.Percentage = domain.Round2(float64(row.Implemented) / float64(row.Total) * 100)
		}
		out = append(out, row)
	}
	return out
}

package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapMapAssetRequestToDomain(controlID string, req api.MapAssetRequest) domain.ControlAssetMapping {
	return domain.ControlAssetMapping{
		ControlID:            controlID,
		AssetID:              req.AssetID,
		AssetType:            domain.AssetType(req.AssetType),
		ImplementationStatus: domain.ImplementationStatus(req.ImplementationStatus),
		ImplementationNotes:  req.ImplementationNotes,
		IsAutomated:          req.IsAutomated,
		LastTestDate:         req.LastTestDate,
		LastTestResult:       req.LastTestResult,
		EffectivenessScore:   req.EffectivenessScore,
	}
}

func MapUpdateMappingToDomain(req api.UpdateMappingRequest) domain.MappingUpdate {
	u := domain.MappingUpdate{
		ImplementationNotes: req.ImplementationNotes,
		IsAutomated:         req.IsAutomated,
		LastTestDate:        req.LastTestDate,
		LastTestResult:      req.LastTestResult,
		EffectivenessScore:  req.EffectivenessScore,
	}
	if req.ImplementationStatus != nil {
		v := domain.ImplementationStatus(*req.ImplementationStatus)
		u.ImplementationStatus = &v
	}
	return u
}

func MapDomainMappingToApi(m domain.ControlAssetMapping) api.ControlAssetMapping {
	return api.ControlAssetMapping{
		ID:                   m.ID,
		ControlID:            m.ControlID,
		AssetID:              m.AssetID,
		AssetType:            string(m.AssetType),
		ImplementationStatus: string(m.ImplementationStatus),
		ImplementationNotes:  m.ImplementationNotes,
		IsAutomated:          m.IsAutomated,
		LastTestDate:         m.LastTestDate,
		LastTestResult:       m.LastTestResult,
		EffectivenessScore:   m.EffectivenessScore,
		MappedBy:             m.MappedBy,
		MappedAt:             m.MappedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func statusCounts(in map[domain.ImplementationStatus]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

func MapDomainAssetComplianceToApi(c domain.AssetCompliance) api.AssetCompliance {
	return api.AssetCompliance{
		AssetType:            string(c.Asset.Type),
		AssetID:              c.Asset.ID,
		TotalControls:        c.TotalControls,
		Breakdown:            statusCounts(c.Breakdown),
		ImplementedControls:  c.ImplementedControls,
		CompliancePercentage: c.CompliancePercentage,
	}
}

func MapDomainEffectivenessToApi(e domain.ControlEffectiveness) api.ControlEffectiveness {
	return api.ControlEffectiveness{
		ControlID:            e.ControlID,
		TotalAssets:          e.TotalAssets,
		Breakdown:            statusCounts(e.Breakdown),
		AverageEffectiveness: e.AverageEffectiveness,
	}
}

func MapDomainMatrixRowToApi(r domain.MatrixRow) api.MatrixRow {
	assets := make(map[string]string, len(r.Assets))
	for k, v := range r.Assets {
		assets[k] = string(v)
	}
	return api.MatrixRow{
		ControlID:         r.ControlID,
		ControlIdentifier: r.ControlIdentifier,
		ControlTitle:      r.ControlTitle,
		Assets:            assets,
	}
}

func MapDomainMatrixStatsToApi(s domain.MatrixStats) api.MatrixStats {
	byType := make(map[string]int, len(s.ByAssetType))
	for k, v := range s.ByAssetType {
		byType[string(k)] = v
	}
	return api.MatrixStats{
		TotalMappings:        s.TotalMappings,
		ByStatus:             statusCounts(s.ByStatus),
		ByAssetType:          byType,
		AverageEffectiveness: s.AverageEffectiveness,
		UnmappedControls:     s.UnmappedControls,
	}
}

func MapDomainAssetTypeComplianceToApi(c domain.AssetTypeCompliance) api.AssetTypeCompliance {
	return api.AssetTypeCompliance{
		AssetType:   string(c.AssetType),
		Total:       c.Total,
		Implemented: c.Implemented,
		Percentage:  c.Percentage,
	}
}

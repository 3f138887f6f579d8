package assetcontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func mapping(status domain.ImplementationStatus, score *float64) domain.ControlAssetMapping {
	return domain.ControlAssetMapping{ImplementationStatus: status, EffectivenessScore: score}
}

func score(v float64) *float64 {
	return &v
}

func TestCompliance(t *testing.T) {
	asset := domain.AssetRef{Type: domain.AssetApplication, ID: "app-1"}

	tests := []struct {
		name        string
		mappings    []domain.ControlAssetMapping
		implemented int
		percentage  float64
	}{
		{name: "no mappings"},
		{
			name: "not applicable excluded",
			mappings: []domain.ControlAssetMapping{
				mapping(domain.ImplImplemented, nil),
				mapping(domain.ImplInProgress, nil),
				mapping(domain.ImplNotImplemented, nil),
				mapping(domain.ImplNotApplicable, nil),
			},
			implemented: 1,
			percentage:  33.33,
		},
		{
			name: "only not applicable",
			mappings: []domain.ControlAssetMapping{
				mapping(domain.ImplNotApplicable, nil),
			},
		},
		{
			name: "fully implemented",
			mappings: []domain.ControlAssetMapping{
				mapping(domain.ImplImplemented, nil),
				mapping(domain.ImplImplemented, nil),
			},
			implemented: 2,
			percentage:  100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compliance(asset, tt.mappings)
			assert.Equal(t, asset, got.Asset)
			assert.Equal(t, len(tt.mappings), got.TotalControls)
			assert.Equal(t, tt.implemented, got.ImplementedControls)
			assert.Equal(t, tt.percentage, got.CompliancePercentage)
			assert.Len(t, got.Breakdown, len(domain.ImplementationStatuses))
		})
	}
}

func TestEffectiveness(t *testing.T) {
	got := Effectiveness("c1", []domain.ControlAssetMapping{
		mapping(domain.ImplImplemented, score(90)),
		mapping(domain.ImplImplemented, score(75.5)),
		mapping(domain.ImplPlanned, nil),
	})
	assert.Equal(t, 3, got.TotalAssets)
	assert.Equal(t, 82.75, got.AverageEffectiveness)
	assert.Equal(t, 2, got.Breakdown[domain.ImplImplemented])
	assert.Equal(t, 1, got.Breakdown[domain.ImplPlanned])

	assert.Zero(t, Effectiveness("c1", nil).AverageEffectiveness)
}

func TestByAssetType(t *testing.T) {
	got := ByAssetType(
		map[string]int{"software": 3, "supplier": 2},
		map[string]int{"software": 1},
	)
	assert.Len(t, got, len(domain.AssetTypes))

	byType := map[domain.AssetType]domain.AssetTypeCompliance{}
	for _, row := range got {
		byType[row.AssetType] = row
	}
	assert.Equal(t, 33.33, byType[domain.AssetSoftware].Percentage)
	assert.Equal(t, 0.0, byType[domain.AssetSupplier].Percentage)
	assert.Equal(t, 2, byType[domain.AssetSupplier].Total)
	assert.Equal(t, 0, byType[domain.AssetPhysical].Total)
}

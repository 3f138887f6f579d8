package api

import "time"

type MapAssetRequest struct {
	AssetID              string     `json:"asset_id" validate:"required"`
	AssetType            string     `json:"asset_type" validate:"required,oneof=physical information application software supplier"`
	ImplementationStatus string     `json:"implementation_status" validate:"omitempty,oneof=not_implemented planned in_progress implemented not_applicable"`
	ImplementationNotes  string     `json:"implementation_notes"`
	IsAutomated          bool       `json:"is_automated"`
	LastTestDate         *time.Time `json:"last_test_date"`
	LastTestResult       string     `json:"last_test_result"`
	EffectivenessScore   *float64   `json:"effectiveness_score" validate:"omitempty,min=0,max=100"`
}

type MapAssetsRequest struct {
	AssetType            string   `json:"asset_type" validate:"required,oneof=physical information application software supplier"`
	AssetIDs             []string `json:"asset_ids" validate:"required,min=1,unique,dive,required"`
	ImplementationStatus string   `json:"implementation_status" validate:"omitempty,oneof=not_implemented planned in_progress implemented not_applicable"`
	ImplementationNotes  string   `json:"implementation_notes"`
}

type UpdateMappingRequest struct {
	ImplementationStatus *string    `json:"implementation_status" validate:"omitempty,oneof=not_implemented planned in_progress implemented not_applicable"`
	ImplementationNotes  *string    `json:"implementation_notes"`
	IsAutomated          *bool      `json:"is_automated"`
	LastTestDate         *time.Time `json:"last_test_date"`
	LastTestResult       *string    `json:"last_test_result"`
	EffectivenessScore   *float64   `json:"effectiveness_score" validate:"omitempty,min=0,max=100"`
}

type BulkStatusRequest struct {
	MappingIDs           []string `json:"mapping_ids" validate:"required,min=1,dive,required"`
	ImplementationStatus string   `json:"implementation_status" validate:"required,oneof=not_implemented planned in_progress implemented not_applicable"`
}

type ControlAssetMapping struct {
	ID                   string     `json:"id"`
	ControlID            string     `json:"control_id"`
	AssetID              string     `json:"asset_id"`
	AssetType            string     `json:"asset_type"`
	ImplementationStatus string     `json:"implementation_status"`
	ImplementationNotes  string     `json:"implementation_notes,omitempty"`
	IsAutomated          bool       `json:"is_automated"`
	LastTestDate         *time.Time `json:"last_test_date,omitempty"`
	LastTestResult       string     `json:"last_test_result,omitempty"`
	EffectivenessScore   *float64   `json:"effectiveness_score,omitempty"`
	MappedBy             string     `json:"mapped_by,omitempty"`
	MappedAt             time.Time  `json:"mapped_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type AssetCompliance struct {
	AssetType            string         `json:"asset_type"`
	AssetID              string         `json:"asset_id"`
	TotalControls        int            `json:"total_controls"`
	Breakdown            map[string]int `json:"breakdown"`
	ImplementedControls  int            `json:"implemented_controls"`
	CompliancePercentage float64        `json:"compliance_percentage"`
}

type ControlEffectiveness struct {
	ControlID            string         `json:"control_id"`
	TotalAssets          int            `json:"total_assets"`
	Breakdown            map[string]int `json:"breakdown"`
	AverageEffectiveness float64        `json:"average_effectiveness"`
}

type MatrixRow struct {
	ControlID         string            `json:"control_id"`
	ControlIdentifier string            `json:"control_identifier"`
	ControlTitle      string            `json:"control_title"`
	Assets            map[string]string `json:"assets"`
}

type MatrixStats struct {
	TotalMappings        int            `json:"total_mappings"`
	ByStatus             map[string]int `json:"by_status"`
	ByAssetType          map[string]int `json:"by_asset_type"`
	AverageEffectiveness float64        `json:"average_effectiveness"`
	UnmappedControls     int            `json:"unmapped_controls"`
}

type AssetTypeCompliance struct {
	AssetType   string  `json:"asset_type"`
	Total       int     `json:"total"`
	Implemented int     `json:"implemented"`
	Percentage  float64 `json:"percentage"`
}

type BulkStatusResult struct {
	Updated int `json:"updated"`
}

package domain

import "time"

type AssetType string

const (
	AssetPhysical    AssetType = "physical"
	AssetInformation AssetType = "information"
	AssetApplication AssetType = "application"
	AssetSoftware    AssetType = "software"
	AssetSupplier    AssetType = "supplier"
)

var AssetTypes = []AssetType{AssetPhysical, AssetInformation, AssetApplication, AssetSoftware, AssetSupplier}

type AssetRef struct {
	Type AssetType
	ID   string
}

type ControlAssetMapping struct {
	ID                   string
	ControlID            string
	AssetID              string
	AssetType            AssetType
	ImplementationStatus ImplementationStatus
	ImplementationNotes  string
	IsAutomated          bool
	LastTestDate         *time.Time
	LastTestResult       string
	EffectivenessScore   *float64
	MappedBy             string
	MappedAt             time.Time
	UpdatedAt            time.Time
}

type MappingUpdate struct {
	ImplementationStatus *ImplementationStatus
	ImplementationNotes  *string
	IsAutomated          *bool
	LastTestDate         *time.Time
	LastTestResult       *string
	EffectivenessScore   *float64
}

type AssetCompliance struct {
	Asset                AssetRef
	TotalControls        int
	Breakdown            map[ImplementationStatus]int
	ImplementedControls  int
	CompliancePercentage float64
}

type ControlEffectiveness struct {
	ControlID            string
	TotalAssets          int
	Breakdown            map[ImplementationStatus]int
	AverageEffectiveness float64
}

type MatrixFilter struct {
	AssetType            AssetType
	DomainID             string
	ImplementationStatus ImplementationStatus
}

type MatrixRow struct {
	ControlID         string
	ControlIdentifier string
	ControlTitle      string
	Assets            map[string]ImplementationStatus
}

type MatrixStats struct {
	TotalMappings        int
	ByStatus             map[ImplementationStatus]int
	ByAssetType          map[AssetType]int
	AverageEffectiveness float64
	UnmappedControls     int
}

type AssetTypeCompliance struct {
	AssetType   AssetType
	Total       int
	Implemented int
	Percentage  float64
}

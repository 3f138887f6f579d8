package api

import "time"

type CreateFrameworkRequest struct {
	FrameworkCode    string     `json:"framework_code" validate:"required,max=50"`
	Name             string     `json:"name" validate:"required,max=255"`
	Version          string     `json:"version"`
	IssuingAuthority string     `json:"issuing_authority"`
	Description      string     `json:"description"`
	EffectiveDate    *time.Time `json:"effective_date"`
	Status           string     `json:"status" validate:"omitempty,oneof=active draft deprecated"`
	Tags             []string   `json:"tags"`
}

type UpdateFrameworkRequest struct {
	Name             *string    `json:"name" validate:"omitempty,max=255"`
	Version          *string    `json:"version"`
	IssuingAuthority *string    `json:"issuing_authority"`
	Description      *string    `json:"description"`
	EffectiveDate    *time.Time `json:"effective_date"`
	Status           *string    `json:"status" validate:"omitempty,oneof=active draft deprecated"`
	Tags             []string   `json:"tags"`
}

type Framework struct {
	ID               string     `json:"id"`
	FrameworkCode    string     `json:"framework_code"`
	Name             string     `json:"name"`
	Version          string     `json:"version,omitempty"`
	IssuingAuthority string     `json:"issuing_authority,omitempty"`
	Description      string     `json:"description,omitempty"`
	EffectiveDate    *time.Time `json:"effective_date,omitempty"`
	Status           string     `json:"status"`
	Tags             []string   `json:"tags"`
	CreatedBy        string     `json:"created_by,omitempty"`
	UpdatedBy        string     `json:"updated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateRequirementRequest struct {
	RequirementIdentifier string `json:"requirement_identifier" validate:"required,max=100"`
	RequirementText       string `json:"requirement_text" validate:"required"`
	Domain                string `json:"domain"`
	Category              string `json:"category"`
	Priority              string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DisplayOrder          int    `json:"display_order" validate:"min=0"`
}

type FrameworkRequirement struct {
	ID                    string    `json:"id"`
	FrameworkID           string    `json:"framework_id"`
	RequirementIdentifier string    `json:"requirement_identifier"`
	RequirementText       string    `json:"requirement_text"`
	Domain                string    `json:"domain,omitempty"`
	Category              string    `json:"category,omitempty"`
	Priority              string    `json:"priority,omitempty"`
	DisplayOrder          int       `json:"display_order"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type CreateFrameworkMappingRequest struct {
	RequirementID string `json:"requirement_id" validate:"required,uuid"`
	CoverageLevel string `json:"coverage_level" validate:"required,oneof=full partial not_applicable"`
	MappingNotes  string `json:"mapping_notes"`
}

type BulkFrameworkMappingRequest struct {
	RequirementIDs []string `json:"requirement_ids" validate:"required,min=1,dive,uuid"`
	CoverageLevel  string   `json:"coverage_level" validate:"required,oneof=full partial not_applicable"`
	MappingNotes   string   `json:"mapping_notes"`
}

type UpdateFrameworkMappingRequest struct {
	CoverageLevel *string `json:"coverage_level" validate:"omitempty,oneof=full partial not_applicable"`
	MappingNotes  *string `json:"mapping_notes"`
}

type FrameworkControlMapping struct {
	ID            string    `json:"id"`
	RequirementID string    `json:"requirement_id"`
	ControlID     string    `json:"control_id"`
	CoverageLevel string    `json:"coverage_level"`
	MappingNotes  string    `json:"mapping_notes,omitempty"`
	MappedBy      string    `json:"mapped_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RequirementControl struct {
	ControlID            string `json:"control_id"`
	ControlIdentifier    string `json:"control_identifier"`
	CoverageLevel        string `json:"coverage_level"`
	ImplementationStatus string `json:"implementation_status"`
}

type RequirementCoverage struct {
	RequirementID         string               `json:"requirement_id"`
	RequirementIdentifier string               `json:"requirement_identifier"`
	RequirementText       string               `json:"requirement_text"`
	Domain                string               `json:"domain,omitempty"`
	Status                string               `json:"status"`
	Controls              []RequirementControl `json:"controls"`
}

type DomainCoverage struct {
	Domain        string `json:"domain"`
	Total         int    `json:"total"`
	Met           int    `json:"met"`
	PartiallyMet  int    `json:"partially_met"`
	NotMet        int    `json:"not_met"`
	NotApplicable int    `json:"not_applicable"`
}

type CoverageSummary struct {
	Total             int `json:"total"`
	Met               int `json:"met"`
	PartiallyMet      int `json:"partially_met"`
	NotMet            int `json:"not_met"`
	NotApplicable     int `json:"not_applicable"`
	OverallCompliance int `json:"overall_compliance"`
}

type CoverageMatrix struct {
	Framework    Framework             `json:"framework"`
	Requirements []RequirementCoverage `json:"requirements"`
	Summary      CoverageSummary       `json:"summary"`
	Domains      []DomainCoverage      `json:"domains"`
}

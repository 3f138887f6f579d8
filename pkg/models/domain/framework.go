package domain

import "time"

type FrameworkStatus string

const (
	FrameworkActive     FrameworkStatus = "active"
	FrameworkDraft      FrameworkStatus = "draft"
	FrameworkDeprecated FrameworkStatus = "deprecated"
)

type Framework struct {
	ID               string
	FrameworkCode    string
	Name             string
	Version          string
	IssuingAuthority string
	Description      string
	EffectiveDate    *time.Time
	Status           FrameworkStatus
	Tags             []string
	Ownership
}

type FrameworkFilter struct {
	Status FrameworkStatus
	Search string
	Page   Page
}

type FrameworkUpdate struct {
	Name             *string
	Version          *string
	IssuingAuthority *string
	Description      *string
	EffectiveDate    *time.Time
	Status           *FrameworkStatus
	Tags             []string
	UpdatedBy        string
}

type FrameworkRequirement struct {
	ID                    string
	FrameworkID           string
	RequirementIdentifier string
	RequirementText       string
	Domain                string
	Category              string
	Priority              string
	DisplayOrder          int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type CoverageLevel string

const (
	CoverageFull          CoverageLevel = "full"
	CoveragePartial       CoverageLevel = "partial"
	CoverageNotApplicable CoverageLevel = "not_applicable"
)

type FrameworkControlMapping struct {
	ID            string
	RequirementID string
	ControlID     string
	CoverageLevel CoverageLevel
	MappingNotes  string
	MappedBy      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RequirementMapping joins a mapping with its control's implementation status.
type RequirementMapping struct {
	RequirementID        string
	ControlID            string
	ControlIdentifier    string
	CoverageLevel        CoverageLevel
	ImplementationStatus ImplementationStatus
}

type RequirementStatus string

const (
	RequirementMet           RequirementStatus = "met"
	RequirementPartiallyMet  RequirementStatus = "partially_met"
	RequirementNotMet        RequirementStatus = "not_met"
	RequirementNotApplicable RequirementStatus = "not_applicable"
)

type RequirementCoverage struct {
	Requirement FrameworkRequirement
	Status      RequirementStatus
	Controls    []RequirementMapping
}

type DomainCoverage struct {
	Domain        string
	Total         int
	Met           int
	PartiallyMet  int
	NotMet        int
	NotApplicable int
}

type CoverageMatrix struct {
	Framework         Framework
	Requirements      []RequirementCoverage
	Total             int
	Met               int
	PartiallyMet      int
	NotMet            int
	NotApplicable     int
	OverallCompliance int
	Domains           []DomainCoverage
}

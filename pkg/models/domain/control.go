package domain

type ControlType string

const (
	ControlPreventive     ControlType = "preventive"
	ControlDetective      ControlType = "detective"
	ControlCorrective     ControlType = "corrective"
	ControlCompensating   ControlType = "compensating"
	ControlAdministrative ControlType = "administrative"
	ControlTechnical      ControlType = "technical"
	ControlPhysical       ControlType = "physical"
)

type ControlStatus string

const (
	ControlDraft      ControlStatus = "draft"
	ControlActive     ControlStatus = "active"
	ControlDeprecated ControlStatus = "deprecated"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type UnifiedControl struct {
	ID                   string
	ControlIdentifier    string
	Title                string
	Description          string
	ControlType          ControlType
	ControlCategory      string
	DomainID             string
	Complexity           Level
	CostImpact           Level
	Status               ControlStatus
	ImplementationStatus ImplementationStatus
	ControlOwnerID       string
	ControlProcedures    string
	TestingProcedures    string
	Tags                 []string
	Ownership
}

// ControlSortFields are the columns a control list may be ordered by.
var ControlSortFields = []string{
	"created_at", "updated_at", "control_identifier", "title", "status", "implementation_status", "control_type",
}

type ControlFilter struct {
	ControlType          ControlType
	Status               ControlStatus
	ImplementationStatus ImplementationStatus
	DomainID             string
	ControlOwnerID       string
	Search               string
	Sort                 Sort
	Page                 Page
}

// ControlUpdate carries a partial update; nil fields are left untouched.
type ControlUpdate struct {
	Title                *string
	Description          *string
	ControlType          *ControlType
	ControlCategory      *string
	DomainID             *string
	Complexity           *Level
	CostImpact           *Level
	Status               *ControlStatus
	ImplementationStatus *ImplementationStatus
	ControlOwnerID       *string
	ControlProcedures    *string
	TestingProcedures    *string
	Tags                 []string
	UpdatedBy            string
}

type ControlLibraryStats struct {
	Total              int
	Active             int
	Draft              int
	Deprecated         int
	ByType             map[string]int
	ByComplexity       map[string]int
	ImplementationRate int
}

type ImportRowError struct {
	Row   int
	Error string
}

type ImportResult struct {
	Created int
	Skipped int
	Errors  []ImportRowError
}

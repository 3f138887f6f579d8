package api

import "time"

type CreateControlRequest struct {
	ControlIdentifier    string   `json:"control_identifier" yaml:"control_identifier" validate:"required,max=100"`
	Title                string   `json:"title" yaml:"title" validate:"required,max=500"`
	Description          string   `json:"description" yaml:"description"`
	ControlType          string   `json:"control_type" yaml:"control_type" validate:"omitempty,oneof=preventive detective corrective compensating administrative technical physical"`
	ControlCategory      string   `json:"control_category" yaml:"control_category"`
	DomainID             string   `json:"domain_id" yaml:"domain_id" validate:"omitempty,uuid"`
	Complexity           string   `json:"complexity" yaml:"complexity" validate:"omitempty,oneof=low medium high"`
	CostImpact           string   `json:"cost_impact" yaml:"cost_impact" validate:"omitempty,oneof=low medium high"`
	Status               string   `json:"status" yaml:"status" validate:"omitempty,oneof=draft active deprecated"`
	ImplementationStatus string   `json:"implementation_status" yaml:"implementation_status" validate:"omitempty,oneof=not_implemented planned in_progress implemented not_applicable"`
	ControlOwnerID       string   `json:"control_owner_id" yaml:"control_owner_id"`
	ControlProcedures    string   `json:"control_procedures" yaml:"control_procedures"`
	TestingProcedures    string   `json:"testing_procedures" yaml:"testing_procedures"`
	Tags                 []string `json:"tags" yaml:"tags"`
}

type UpdateControlRequest struct {
	Title                *string  `json:"title" validate:"omitempty,max=500"`
	Description          *string  `json:"description"`
	ControlType          *string  `json:"control_type" validate:"omitempty,oneof=preventive detective corrective compensating administrative technical physical"`
	ControlCategory      *string  `json:"control_category"`
	DomainID             *string  `json:"domain_id" validate:"omitempty,uuid"`
	Complexity           *string  `json:"complexity" validate:"omitempty,oneof=low medium high"`
	CostImpact           *string  `json:"cost_impact" validate:"omitempty,oneof=low medium high"`
	Status               *string  `json:"status" validate:"omitempty,oneof=draft active deprecated"`
	ImplementationStatus *string  `json:"implementation_status" validate:"omitempty,oneof=not_implemented planned in_progress implemented not_applicable"`
	ControlOwnerID       *string  `json:"control_owner_id"`
	ControlProcedures    *string  `json:"control_procedures"`
	TestingProcedures    *string  `json:"testing_procedures"`
	Tags                 []string `json:"tags"`
}

type Control struct {
	ID                   string    `json:"id"`
	ControlIdentifier    string    `json:"control_identifier"`
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	ControlType          string    `json:"control_type,omitempty"`
	ControlCategory      string    `json:"control_category,omitempty"`
	DomainID             string    `json:"domain_id,omitempty"`
	Complexity           string    `json:"complexity,omitempty"`
	CostImpact           string    `json:"cost_impact,omitempty"`
	Status               string    `json:"status"`
	ImplementationStatus string    `json:"implementation_status"`
	ControlOwnerID       string    `json:"control_owner_id,omitempty"`
	ControlProcedures    string    `json:"control_procedures,omitempty"`
	TestingProcedures    string    `json:"testing_procedures,omitempty"`
	Tags                 []string  `json:"tags"`
	CreatedBy            string    `json:"created_by,omitempty"`
	UpdatedBy            string    `json:"updated_by,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type ControlLibraryStats struct {
	Total              int            `json:"total"`
	Active             int            `json:"active"`
	Draft              int            `json:"draft"`
	Deprecated         int            `json:"deprecated"`
	ByType             map[string]int `json:"by_type"`
	ByComplexity       map[string]int `json:"by_complexity"`
	ImplementationRate int            `json:"implementation_rate"`
}

type ImportControlsRequest struct {
	Controls []CreateControlRequest `json:"controls" validate:"required,min=1"`
}

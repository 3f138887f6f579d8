package api

import "time"

type CreateObligationRequest struct {
	ObligationIdentifier string     `json:"obligation_identifier" yaml:"obligation_identifier" validate:"required,max=100"`
	Title                string     `json:"title" yaml:"title" validate:"required,max=500"`
	Description          string     `json:"description" yaml:"description"`
	Source               string     `json:"source" yaml:"source"`
	SourceReference      string     `json:"source_reference" yaml:"source_reference"`
	OwnerID              string     `json:"owner_id" yaml:"owner_id"`
	Status               string     `json:"status" yaml:"status" validate:"omitempty,oneof=not_started in_progress met not_met not_applicable"`
	Priority             string     `json:"priority" yaml:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate              *time.Time `json:"due_date" yaml:"due_date"`
}

type UpdateObligationRequest struct {
	Title           *string    `json:"title" validate:"omitempty,max=500"`
	Description     *string    `json:"description"`
	Source          *string    `json:"source"`
	SourceReference *string    `json:"source_reference"`
	OwnerID         *string    `json:"owner_id"`
	Status          *string    `json:"status" validate:"omitempty,oneof=not_started in_progress met not_met not_applicable"`
	Priority        *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate         *time.Time `json:"due_date"`
}

type Obligation struct {
	ID                   string     `json:"id"`
	ObligationIdentifier string     `json:"obligation_identifier"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Source               string     `json:"source,omitempty"`
	SourceReference      string     `json:"source_reference,omitempty"`
	OwnerID              string     `json:"owner_id,omitempty"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	CreatedBy            string     `json:"created_by,omitempty"`
	UpdatedBy            string     `json:"updated_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type ObligationStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	Overdue    int            `json:"overdue"`
}

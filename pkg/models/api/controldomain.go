package api

import "time"

type CreateDomainRequest struct {
	Name         string `json:"name" yaml:"name" validate:"required,max=255"`
	Code         string `json:"code" yaml:"code" validate:"required,max=50"`
	Description  string `json:"description" yaml:"description"`
	ParentID     string `json:"parent_id" yaml:"parent_id" validate:"omitempty,uuid"`
	DisplayOrder int    `json:"display_order" yaml:"display_order" validate:"min=0"`
	IsActive     *bool  `json:"is_active" yaml:"is_active"`
}

type UpdateDomainRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	ParentID     *string `json:"parent_id" validate:"omitempty,uuid"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"is_active"`
}

type ControlDomain struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Description  string    `json:"description,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	UpdatedBy    string    `json:"updated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DomainNode struct {
	ControlDomain
	ControlCount int           `json:"control_count"`
	Children     []*DomainNode `json:"children"`
}

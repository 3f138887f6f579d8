package api

import "time"

type CreateExceptionRequest struct {
	ExceptionIdentifier string     `json:"exception_identifier" validate:"omitempty,max=100"`
	PolicyID            string     `json:"policy_id" validate:"required,uuid"`
	Title               string     `json:"title" validate:"required,max=500"`
	Justification       string     `json:"justification" validate:"required"`
	RiskLevel           string     `json:"risk_level" validate:"required,oneof=low medium high critical"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
}

type UpdateExceptionRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=500"`
	Justification *string    `json:"justification"`
	RiskLevel     *string    `json:"risk_level" validate:"omitempty,oneof=low medium high critical"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

type ExceptionDecisionRequest struct {
	Notes     string     `json:"notes"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type PolicyException struct {
	ID                  string     `json:"id"`
	ExceptionIdentifier string     `json:"exception_identifier"`
	PolicyID            string     `json:"policy_id"`
	Title               string     `json:"title"`
	Justification       string     `json:"justification"`
	RiskLevel           string     `json:"risk_level"`
	Status              string     `json:"status"`
	RequestedBy         string     `json:"requested_by,omitempty"`
	ApprovedBy          string     `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	DecisionNotes       string     `json:"decision_notes,omitempty"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

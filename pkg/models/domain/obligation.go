package domain

import "time"

type ObligationStatus string

const (
	ObligationNotStarted    ObligationStatus = "not_started"
	ObligationInProgress    ObligationStatus = "in_progress"
	ObligationMet           ObligationStatus = "met"
	ObligationNotMet        ObligationStatus = "not_met"
	ObligationNotApplicable ObligationStatus = "not_applicable"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Obligation struct {
	ID                   string
	ObligationIdentifier string
	Title                string
	Description          string
	Source               string
	SourceReference      string
	OwnerID              string
	Status               ObligationStatus
	Priority             Priority
	DueDate              *time.Time
	Ownership
}

type ObligationFilter struct {
	Status   ObligationStatus
	Priority Priority
	OwnerID  string
	Search   string
	Page     Page
}

type ObligationUpdate struct {
	Title           *string
	Description     *string
	Source          *string
	SourceReference *string
	OwnerID         *string
	Status          *ObligationStatus
	Priority        *Priority
	DueDate         *time.Time
	UpdatedBy       string
}

type ObligationStats struct {
	Total      int
	ByStatus   map[string]int
	ByPriority map[string]int
	Overdue    int
}

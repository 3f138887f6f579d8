package api

import "time"

type CreateSOPRequest struct {
	SOPIdentifier   string     `json:"sop_identifier" validate:"required,max=100"`
	Title           string     `json:"title" validate:"required,max=500"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Purpose         string     `json:"purpose"`
	Scope           string     `json:"scope"`
	Content         string     `json:"content"`
	Version         string     `json:"version"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft in_review approved published archived"`
	OwnerID         string     `json:"owner_id"`
	ReviewFrequency string     `json:"review_frequency"`
	NextReviewDate  *time.Time `json:"next_review_date"`
	Tags            []string   `json:"tags"`
	ControlIDs      []string   `json:"control_ids" validate:"omitempty,dive,uuid"`
}

type UpdateSOPRequest struct {
	Title           *string    `json:"title" validate:"omitempty,max=500"`
	Category        *string    `json:"category"`
	Subcategory     *string    `json:"subcategory"`
	Purpose         *string    `json:"purpose"`
	Scope           *string    `json:"scope"`
	Content         *string    `json:"content"`
	Version         *string    `json:"version"`
	Status          *string    `json:"status" validate:"omitempty,oneof=draft in_review approved published archived"`
	OwnerID         *string    `json:"owner_id"`
	ReviewFrequency *string    `json:"review_frequency"`
	NextReviewDate  *time.Time `json:"next_review_date"`
	Tags            []string   `json:"tags"`
	ControlIDs      []string   `json:"control_ids" validate:"omitempty,dive,uuid"`
	ChangeSummary   string     `json:"change_summary"`
}

type PublishSOPRequest struct {
	AssignUserIDs []string `json:"assign_user_ids" validate:"omitempty,dive,required"`
}

type SOP struct {
	ID              string     `json:"id"`
	SOPIdentifier   string     `json:"sop_identifier"`
	Title           string     `json:"title"`
	Category        string     `json:"category,omitempty"`
	Subcategory     string     `json:"subcategory,omitempty"`
	Purpose         string     `json:"purpose,omitempty"`
	Scope           string     `json:"scope,omitempty"`
	Content         string     `json:"content,omitempty"`
	Version         string     `json:"version"`
	VersionNumber   int        `json:"version_number"`
	Status          string     `json:"status"`
	OwnerID         string     `json:"owner_id,omitempty"`
	ReviewFrequency string     `json:"review_frequency,omitempty"`
	NextReviewDate  *time.Time `json:"next_review_date,omitempty"`
	ApprovalDate    *time.Time `json:"approval_date,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	Tags            []string   `json:"tags"`
	ControlIDs      []string   `json:"control_ids"`
	CreatedBy       string     `json:"created_by,omitempty"`
	UpdatedBy       string     `json:"updated_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type SOPVersion struct {
	ID            string    `json:"id"`
	SOPID         string    `json:"sop_id"`
	VersionNumber int       `json:"version_number"`
	Version       string    `json:"version"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ChangeSummary string    `json:"change_summary,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateStepRequest struct {
	StepNumber       int    `json:"step_number" validate:"min=0"`
	Title            string `json:"title" validate:"required,max=255"`
	Description      string `json:"description"`
	ExpectedDuration int    `json:"expected_duration" validate:"min=0"`
	ResponsibleRole  string `json:"responsible_role"`
	IsCritical       bool   `json:"is_critical"`
}

type UpdateStepRequest struct {
	StepNumber       *int    `json:"step_number" validate:"omitempty,min=1"`
	Title            *string `json:"title" validate:"omitempty,max=255"`
	Description      *string `json:"description"`
	ExpectedDuration *int    `json:"expected_duration" validate:"omitempty,min=0"`
	ResponsibleRole  *string `json:"responsible_role"`
	IsCritical       *bool   `json:"is_critical"`
}

type SOPStep struct {
	ID               string    `json:"id"`
	SOPID            string    `json:"sop_id"`
	StepNumber       int       `json:"step_number"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	ExpectedDuration int       `json:"expected_duration"`
	ResponsibleRole  string    `json:"responsible_role,omitempty"`
	IsCritical       bool      `json:"is_critical"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateScheduleRequest struct {
	Frequency         string    `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly annually"`
	NextExecutionDate time.Time `json:"next_execution_date" validate:"required"`
	AssignedUserID    string    `json:"assigned_user_id"`
}

type SOPSchedule struct {
	ID                string    `json:"id"`
	SOPID             string    `json:"sop_id"`
	Frequency         string    `json:"frequency"`
	NextExecutionDate time.Time `json:"next_execution_date"`
	AssignedUserID    string    `json:"assigned_user_id,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedBy         string    `json:"created_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type SOPFeedback struct {
	ID        string    `json:"id"`
	SOPID     string    `json:"sop_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackSummary struct {
	SOPID         string         `json:"sop_id"`
	Count         int            `json:"count"`
	AverageRating float64        `json:"average_rating"`
	Distribution  map[string]int `json:"distribution"`
}

type SOPAssignment struct {
	ID             string     `json:"id"`
	SOPID          string     `json:"sop_id"`
	UserID         string     `json:"user_id"`
	AssignedBy     string     `json:"assigned_by,omitempty"`
	AssignedAt     time.Time  `json:"assigned_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

type AssignedSOP struct {
	SOP        SOP           `json:"sop"`
	Assignment SOPAssignment `json:"assignment"`
}

type PublicationStats struct {
	TotalPublished     int `json:"total_published"`
	PublishedThisMonth int `json:"published_this_month"`
	PublishedThisYear  int `json:"published_this_year"`
	TotalAssignments   int `json:"total_assignments"`
	Acknowledged       int `json:"acknowledged"`
	AcknowledgmentRate int `json:"acknowledgment_rate"`
}

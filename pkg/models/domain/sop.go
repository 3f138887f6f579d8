package domain

import "time"

type SOPStatus string

const (
	SOPDraft     SOPStatus = "draft"
	SOPInReview  SOPStatus = "in_review"
	SOPApproved  SOPStatus = "approved"
	SOPPublished SOPStatus = "published"
	SOPArchived  SOPStatus = "archived"
)

type SOP struct {
	ID              string
	SOPIdentifier   string
	Title           string
	Category        string
	Subcategory     string
	Purpose         string
	Scope           string
	Content         string
	Version         string
	VersionNumber   int
	Status          SOPStatus
	OwnerID         string
	ReviewFrequency string
	NextReviewDate  *time.Time
	ApprovalDate    *time.Time
	PublishedDate   *time.Time
	Tags            []string
	ControlIDs      []string
	Ownership
}

var SOPSortFields = []string{"created_at", "updated_at", "title", "status", "category", "next_review_date"}

type SOPFilter struct {
	Status   SOPStatus
	Category string
	OwnerID  string
	Search   string
	Sort     Sort
	Page     Page
}

type SOPUpdate struct {
	Title           *string
	Category        *string
	Subcategory     *string
	Purpose         *string
	Scope           *string
	Content         *string
	Version         *string
	Status          *SOPStatus
	OwnerID         *string
	ReviewFrequency *string
	NextReviewDate  *time.Time
	Tags            []string
	ControlIDs      []string
	ChangeSummary   string
	UpdatedBy       string
}

type SOPVersion struct {
	ID            string
	SOPID         string
	VersionNumber int
	Version       string
	Title         string
	Content       string
	ChangeSummary string
	CreatedBy     string
	CreatedAt     time.Time
}

type SOPStep struct {
	ID               string
	SOPID            string
	StepNumber       int
	Title            string
	Description      string
	ExpectedDuration int
	ResponsibleRole  string
	IsCritical       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type SOPStepUpdate struct {
	StepNumber       *int
	Title            *string
	Description      *string
	ExpectedDuration *int
	ResponsibleRole  *string
	IsCritical       *bool
}

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// Next returns the occurrence following t.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}

type SOPSchedule struct {
	ID                string
	SOPID             string
	Frequency         Frequency
	NextExecutionDate time.Time
	AssignedUserID    string
	IsActive          bool
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SOPExecution struct {
	ID         string
	SOPID      string
	ScheduleID string
	ExecutedBy string
	Outcome    string
	Notes      string
	ExecutedAt time.Time
}

type SOPFeedback struct {
	ID        string
	SOPID     string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type FeedbackSummary struct {
	SOPID         string
	Count         int
	AverageRating float64
	Distribution  map[int]int
}

type SOPAssignment struct {
	ID             string
	SOPID          string
	UserID         string
	AssignedBy     string
	AssignedAt     time.Time
	AcknowledgedAt *time.Time
}

type AssignedSOP struct {
	SOP        SOP
	Assignment SOPAssignment
}

type PublicationStats struct {
	TotalPublished     int
	PublishedThisMonth int
	PublishedThisYear  int
	TotalAssignments   int
	Acknowledged       int
	AcknowledgmentRate int
}

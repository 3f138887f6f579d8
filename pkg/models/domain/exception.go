package domain

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type ExceptionStatus string

const (
	ExceptionRequested ExceptionStatus = "requested"
	ExceptionApproved  ExceptionStatus = "approved"
	ExceptionRejected  ExceptionStatus = "rejected"
	ExceptionExpired   ExceptionStatus = "expired"
)

type PolicyException struct {
	ID                  string
	ExceptionIdentifier string
	PolicyID            string
	Title               string
	Justification       string
	RiskLevel           RiskLevel
	Status              ExceptionStatus
	RequestedBy         string
	ApprovedBy          string
	ApprovedAt          *time.Time
	DecisionNotes       string
	StartDate           *time.Time
	EndDate             *time.Time
	Ownership
}

type ExceptionFilter struct {
	Status    ExceptionStatus
	PolicyID  string
	RiskLevel RiskLevel
	Search    string
	Page      Page
}

type ExceptionUpdate struct {
	Title         *string
	Justification *string
	RiskLevel     *RiskLevel
	StartDate     *time.Time
	EndDate       *time.Time
	UpdatedBy     string
}

type ExceptionDecision struct {
	Approve   bool
	DecidedBy string
	Notes     string
	StartDate *time.Time
	EndDate   *time.Time
}

package domain

import "time"

type PolicyStatus string

const (
	PolicyDraft     PolicyStatus = "draft"
	PolicyInReview  PolicyStatus = "in_review"
	PolicyApproved  PolicyStatus = "approved"
	PolicyPublished PolicyStatus = "published"
	PolicyArchived  PolicyStatus = "archived"
)

type Policy struct {
	ID            string
	Title         string
	PolicyType    string
	Status        PolicyStatus
	OwnerID       string
	Version       string
	Content       string
	EffectiveDate *time.Time
	Ownership
}

type PolicyFilter struct {
	Status     PolicyStatus
	PolicyType string
	OwnerID    string
	Search     string
	Page       Page
}

type PolicyUpdate struct {
	Title         *string
	PolicyType    *string
	Status        *PolicyStatus
	OwnerID       *string
	Version       *string
	Content       *string
	EffectiveDate *time.Time
	UpdatedBy     string
}

type PolicyAcknowledgment struct {
	PolicyID       string
	UserID         string
	AcknowledgedAt time.Time
}

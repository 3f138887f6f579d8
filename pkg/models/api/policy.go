package api

import "time"

type CreatePolicyRequest struct {
	Title         string     `json:"title" validate:"required,max=500"`
	PolicyType    string     `json:"policy_type"`
	Status        string     `json:"status" validate:"omitempty,oneof=draft in_review approved published archived"`
	OwnerID       string     `json:"owner_id"`
	Version       string     `json:"version"`
	Content       string     `json:"content"`
	EffectiveDate *time.Time `json:"effective_date"`
}

type UpdatePolicyRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=500"`
	PolicyType    *string    `json:"policy_type"`
	Status        *string    `json:"status" validate:"omitempty,oneof=draft in_review approved published archived"`
	OwnerID       *string    `json:"owner_id"`
	Version       *string    `json:"version"`
	Content       *string    `json:"content"`
	EffectiveDate *time.Time `json:"effective_date"`
}

type Policy struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	PolicyType    string     `json:"policy_type,omitempty"`
	Status        string     `json:"status"`
	OwnerID       string     `json:"owner_id,omitempty"`
	Version       string     `json:"version,omitempty"`
	Content       string     `json:"content,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
	UpdatedBy     string     `json:"updated_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PolicyAcknowledgment struct {
	PolicyID       string    `json:"policy_id"`
	UserID         string    `json:"user_id"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}

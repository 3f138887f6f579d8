package api

import "time"

type AuditLog struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	UserEmail   string         `json:"user_email,omitempty"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id,omitempty"`
	Description string         `json:"description,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	StatusCode  int            `json:"status_code,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type AuditStats struct {
	Total        int            `json:"total"`
	ByAction     map[string]int `json:"by_action"`
	ByEntityType map[string]int `json:"by_entity_type"`
	From         *time.Time     `json:"from,omitempty"`
	To           *time.Time     `json:"to,omitempty"`
}

type RetentionResult struct {
	Deleted       int `json:"deleted"`
	RetentionDays int `json:"retention_days"`
}

package domain

import "time"

type AuditAction string

const (
	AuditCreate  AuditAction = "create"
	AuditUpdate  AuditAction = "update"
	AuditDelete  AuditAction = "delete"
	AuditRead    AuditAction = "read"
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
	AuditAssign  AuditAction = "assign"
	AuditImport  AuditAction = "import"
	AuditExport  AuditAction = "export"
	AuditPublish AuditAction = "publish"
	AuditArchive AuditAction = "archive"
	AuditLogin   AuditAction = "login"
)

// AuditLog is an immutable record of a user action against an entity.
type AuditLog struct {
	ID          string
	UserID      string
	UserEmail   string
	Action      AuditAction
	EntityType  string
	EntityID    string
	Description string
	Changes     map[string]any
	IPAddress   string
	UserAgent   string
	RequestID   string
	StatusCode  int
	CreatedAt   time.Time
}

type AuditFilter struct {
	UserID     string
	Action     AuditAction
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Search     string
	Page       Page
}

type AuditStats struct {
	Total        int
	ByAction     map[string]int
	ByEntityType map[string]int
	From         *time.Time
	To           *time.Time
}

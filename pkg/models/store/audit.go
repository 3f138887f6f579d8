package store

import (
	"database/sql"
	"time"
)

type AuditLog struct {
	ID          string
	UserID      string
	UserEmail   sql.NullString
	Action      string
	EntityType  string
	EntityID    sql.NullString
	Description sql.NullString
	Changes     sql.NullString
	IPAddress   sql.NullString
	UserAgent   sql.NullString
	RequestID   sql.NullString
	StatusCode  sql.NullInt64
	CreatedAt   time.Time
}

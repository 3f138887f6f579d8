package store

import (
	"database/sql"
	"time"
)

type Workflow struct {
	ID                 string
	Name               string
	Description        sql.NullString
	Type               string
	Status             string
	Trigger            string
	EntityType         string
	Conditions         sql.NullString
	Actions            sql.NullString
	DaysBeforeDeadline int
	CreatedBy          sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type WorkflowExecution struct {
	ID           string
	WorkflowID   string
	EntityType   string
	EntityID     string
	Status       string
	InputData    sql.NullString
	ErrorMessage sql.NullString
	AssignedTo   sql.NullString
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	CreatedAt    time.Time
}

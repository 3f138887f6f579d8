package api

import "time"

type WorkflowActions struct {
	Approvers    []string `json:"approvers,omitempty"`
	ChangeStatus string   `json:"change_status,omitempty"`
	AssignTo     string   `json:"assign_to,omitempty"`
	Notify       []string `json:"notify,omitempty"`
}

type CreateWorkflowRequest struct {
	Name               string          `json:"name" validate:"required,max=255"`
	Description        string          `json:"description"`
	Type               string          `json:"type" validate:"required,oneof=approval notification escalation status_change"`
	Status             string          `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Trigger            string          `json:"trigger" validate:"required,oneof=manual on_create on_update on_status_change on_deadline_approaching on_deadline_passed"`
	EntityType         string          `json:"entity_type" validate:"required,oneof=policy sop control policy_exception obligation"`
	Conditions         map[string]any  `json:"conditions"`
	Actions            WorkflowActions `json:"actions"`
	DaysBeforeDeadline int             `json:"days_before_deadline" validate:"min=0"`
}

type UpdateWorkflowRequest struct {
	Name               *string          `json:"name" validate:"omitempty,max=255"`
	Description        *string          `json:"description"`
	Status             *string          `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Trigger            *string          `json:"trigger" validate:"omitempty,oneof=manual on_create on_update on_status_change on_deadline_approaching on_deadline_passed"`
	Conditions         map[string]any   `json:"conditions"`
	Actions            *WorkflowActions `json:"actions"`
	DaysBeforeDeadline *int             `json:"days_before_deadline" validate:"omitempty,min=0"`
}

type Workflow struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	Trigger            string          `json:"trigger"`
	EntityType         string          `json:"entity_type"`
	Conditions         map[string]any  `json:"conditions,omitempty"`
	Actions            WorkflowActions `json:"actions"`
	DaysBeforeDeadline int             `json:"days_before_deadline,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type ExecuteWorkflowRequest struct {
	EntityType string         `json:"entity_type" validate:"required,oneof=policy sop control policy_exception obligation"`
	EntityID   string         `json:"entity_id" validate:"required"`
	InputData  map[string]any `json:"input_data"`
}

type WorkflowExecution struct {
	ID           string         `json:"id"`
	WorkflowID   string         `json:"workflow_id"`
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Status       string         `json:"status"`
	InputData    map[string]any `json:"input_data,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	AssignedTo   string         `json:"assigned_to,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type WorkflowApproval struct {
	ID          string     `json:"id"`
	ExecutionID string     `json:"execution_id"`
	ApproverID  string     `json:"approver_id"`
	Status      string     `json:"status"`
	StepOrder   int        `json:"step_order"`
	Comments    string     `json:"comments,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ExecutionDetail struct {
	Execution WorkflowExecution  `json:"execution"`
	Workflow  *Workflow          `json:"workflow,omitempty"`
	Approvals []WorkflowApproval `json:"approvals"`
}

type PendingApproval struct {
	Approval  WorkflowApproval  `json:"approval"`
	Execution WorkflowExecution `json:"execution"`
	Workflow  Workflow          `json:"workflow"`
}

type RespondApprovalRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
	Comments string `json:"comments"`
}

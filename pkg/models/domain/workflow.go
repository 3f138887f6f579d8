package domain

import (
	"fmt"
	"time"
)

type WorkflowType string

const (
	WorkflowTypeApproval     WorkflowType = "approval"
	WorkflowTypeNotification WorkflowType = "notification"
	WorkflowTypeEscalation   WorkflowType = "escalation"
	WorkflowTypeStatusChange WorkflowType = "status_change"
)

type WorkflowStatus string

const (
	WorkflowActive   WorkflowStatus = "active"
	WorkflowInactive WorkflowStatus = "inactive"
	WorkflowDraft    WorkflowStatus = "draft"
)

type WorkflowTrigger string

const (
	TriggerManual              WorkflowTrigger = "manual"
	TriggerOnCreate            WorkflowTrigger = "on_create"
	TriggerOnUpdate            WorkflowTrigger = "on_update"
	TriggerOnStatusChange      WorkflowTrigger = "on_status_change"
	TriggerDeadlineApproaching WorkflowTrigger = "on_deadline_approaching"
	TriggerDeadlinePassed      WorkflowTrigger = "on_deadline_passed"
)

type EntityType string

const (
	EntityPolicy          EntityType = "policy"
	EntitySOP             EntityType = "sop"
	EntityControl         EntityType = "control"
	EntityPolicyException EntityType = "policy_exception"
	EntityObligation      EntityType = "obligation"
)

var entityStatuses = map[EntityType][]string{
	EntityPolicy: {
		string(PolicyDraft), string(PolicyInReview), string(PolicyApproved),
		string(PolicyPublished), string(PolicyArchived),
	},
	EntitySOP: {
		string(SOPDraft), string(SOPInReview), string(SOPApproved),
		string(SOPPublished), string(SOPArchived),
	},
	EntityControl: {
		string(ControlDraft), string(ControlActive), string(ControlDeprecated),
	},
	EntityPolicyException: {
		string(ExceptionRequested), string(ExceptionApproved),
		string(ExceptionRejected), string(ExceptionExpired),
	},
	EntityObligation: {
		string(ObligationNotStarted), string(ObligationInProgress), string(ObligationMet),
		string(ObligationNotMet), string(ObligationNotApplicable),
	},
}

// ValidateStatus returns a validation error unless status belongs to the entity type's status set.
func (t EntityType) ValidateStatus(status string) error {
	allowed, ok := entityStatuses[t]
	if !ok {
		return NewValidation("entity_type", fmt.Sprintf("unknown entity type %q", t))
	}
	for _, s := range allowed {
		if s == status {
			return nil
		}
	}
	return NewValidation("status", fmt.Sprintf("%q is not a valid %s status", status, t))
}

type WorkflowActions struct {
	Approvers    []string
	ChangeStatus string
	AssignTo     string
	Notify       []string
}

type Workflow struct {
	ID                 string
	Name               string
	Description        string
	Type               WorkflowType
	Status             WorkflowStatus
	Trigger            WorkflowTrigger
	EntityType         EntityType
	Conditions         map[string]any
	Actions            WorkflowActions
	DaysBeforeDeadline int
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Matches reports whether every condition equals the corresponding data value.
func (w *Workflow) Matches(data map[string]any) bool {
	for k, want := range w.Conditions {
		got, ok := data[k]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

type WorkflowFilter struct {
	Status     WorkflowStatus
	Trigger    WorkflowTrigger
	EntityType EntityType
}

type WorkflowUpdate struct {
	Name               *string
	Description        *string
	Status             *WorkflowStatus
	Trigger            *WorkflowTrigger
	Conditions         map[string]any
	Actions            *WorkflowActions
	DaysBeforeDeadline *int
}

type ExecutionStatus string

const (
	ExecutionPending    ExecutionStatus = "pending"
	ExecutionInProgress ExecutionStatus = "in_progress"
	ExecutionCompleted  ExecutionStatus = "completed"
	ExecutionFailed     ExecutionStatus = "failed"
	ExecutionCancelled  ExecutionStatus = "cancelled"
)

type WorkflowExecution struct {
	ID           string
	WorkflowID   string
	EntityType   EntityType
	EntityID     string
	Status       ExecutionStatus
	InputData    map[string]any
	ErrorMessage *string
	AssignedTo   string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type WorkflowApproval struct {
	ID          string
	ExecutionID string
	ApproverID  string
	Status      ApprovalStatus
	StepOrder   int
	Comments    string
	RespondedAt *time.Time
	CreatedAt   time.Time
}

type ExecutionFilter struct {
	WorkflowID string
	EntityType EntityType
	Status     ExecutionStatus
	Limit      int
}

type ExecutionDetail struct {
	Execution WorkflowExecution
	Workflow  *Workflow
	Approvals []WorkflowApproval
}

type PendingApproval struct {
	Approval  WorkflowApproval
	Execution WorkflowExecution
	Workflow  Workflow
}

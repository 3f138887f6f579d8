package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/events"
	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/workflow"
)

// StatusChanger moves an entity of one type to a new status.
type StatusChanger interface {
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Controller interface {
	Create(ctx context.Context, w *domain.Workflow) (*domain.Workflow, error)
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	List(ctx context.Context, filter domain.WorkflowFilter) ([]domain.Workflow, error)
	Update(ctx context.Context, id string, u domain.WorkflowUpdate) (*domain.Workflow, error)
	Delete(ctx context.Context, id string) error

	Execute(ctx context.Context, workflowID string, entityType domain.EntityType, entityID string, input map[string]any) (*domain.WorkflowExecution, error)
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
	Respond(ctx context.Context, approvalID, userID string, status domain.ApprovalStatus, comments string) (*domain.WorkflowApproval, error)

	PendingApprovals(ctx context.Context, userID string) ([]domain.PendingApproval, error)
	Executions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error)
	ExecutionDetail(ctx context.Context, id string) (*domain.ExecutionDetail, error)
}

var errNotAwaiting = domain.NewValidation("execution", "execution is no longer awaiting approval")

type DefaultController struct {
	workflowStore workflow.Store
	tx            Transactor
	publisher     events.Publisher
	metrics       *metrics.Metrics
	now           func() time.Time

	mu       sync.RWMutex
	changers map[domain.EntityType]StatusChanger
}

func NewController(
	workflowStore workflow.Store,
	tx Transactor,
	publisher events.Publisher,
	m *metrics.Metrics,
) *DefaultController {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &DefaultController{
		workflowStore: workflowStore,
		tx:            tx,
		publisher:     publisher,
		metrics:       m,
		now:           domain.Now,
		changers:      make(map[domain.EntityType]StatusChanger),
	}
}

// Register installs the status changer used by change_status actions for entityType.
func (ctrl *DefaultController) Register(entityType domain.EntityType, changer StatusChanger) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctrl.changers[entityType] = changer
}

func (ctrl *DefaultController) changer(entityType domain.EntityType) (StatusChanger, bool) {
	ctrl.mu.RLock()
	defer ctrl.mu.RUnlock()

	c, ok := ctrl.changers[entityType]
	return c, ok
}

func (ctrl *DefaultController) Create(ctx context.Context, w *domain.Workflow) (*domain.Workflow, error) {
	if err := validateActions(w); err != nil {
		return nil, err
	}
	now := ctrl.now()
	w.ID = uuid.NewString()
	if w.Status == "" {
		w.Status = domain.WorkflowActive
	}
	if w.Trigger == "" {
		w.Trigger = domain.TriggerManual
	}
	if w.Conditions == nil {
		w.Conditions = map[string]any{}
	}
	w.CreatedAt, w.UpdatedAt = now, now

	if err := ctrl.workflowStore.CreateWorkflow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (ctrl *DefaultController) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	return ctrl.workflowStore.GetWorkflow(ctx, id)
}

func (ctrl *DefaultController) List(ctx context.Context, filter domain.WorkflowFilter) ([]domain.Workflow, error) {
	return ctrl.workflowStore.ListWorkflows(ctx, filter)
}

func (ctrl *DefaultController) Update(ctx context.Context, id string, u domain.WorkflowUpdate) (*domain.Workflow, error) {
	w, err := ctrl.workflowStore.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		w.Name = *u.Name
	}
	if u.Description != nil {
		w.Description = *u.Description
	}
	if u.Status != nil {
		w.Status = *u.Status
	}
	if u.Trigger != nil {
		w.Trigger = *u.Trigger
	}
	if u.Conditions != nil {
		w.Conditions = u.Conditions
	}
	if u.Actions != nil {
		w.Actions = *u.Actions
	}
	if u.DaysBeforeDeadline != nil {
		w.DaysBeforeDeadline = *u.DaysBeforeDeadline
	}
	if err := validateActions(w); err != nil {
		return nil, err
	}
	w.UpdatedAt = ctrl.now()

	if err := ctrl.workflowStore.UpdateWorkflow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (ctrl *DefaultController) Delete(ctx context.Context, id string) error {
	return ctrl.workflowStore.DeleteWorkflow(ctx, id)
}

// validateActions rejects a change_status target outside the entity type's statuses.
func validateActions(w *domain.Workflow) error {
	if w.Actions.ChangeStatus == "" {
		return nil
	}
	return w.EntityType.ValidateStatus(w.Actions.ChangeStatus)
}

// Execute starts workflowID against an entity. Approval workflows wait for their
// approvers; every other workflow applies its actions before returning.
func (ctrl *DefaultController) Execute(
	ctx context.Context,
	workflowID string,
	entityType domain.EntityType,
	entityID string,
	input map[string]any,
) (*domain.WorkflowExecution, error) {
	wf, err := ctrl.workflowStore.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.Status != domain.WorkflowActive {
		return nil, domain.NewValidation("workflow", "workflow is not active")
	}
	switch {
	case entityType == "":
		entityType = wf.EntityType
	case entityType != wf.EntityType:
		return nil, domain.NewValidation("entity_type",
			fmt.Sprintf("workflow runs on %s, not %s", wf.EntityType, entityType))
	}
	if input == nil {
		input = map[string]any{}
	}

	now := ctrl.now()
	exec := &domain.WorkflowExecution{
		ID:         uuid.NewString(),
		WorkflowID: wf.ID,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     domain.ExecutionInProgress,
		InputData:  input,
		StartedAt:  &now,
		CreatedAt:  now,
	}

	logger := zerolog.Ctx(ctx).With().
		Str("workflow_id", wf.ID).
		Str("execution_id", exec.ID).
		Str("entity_type", string(entityType)).
		Str("entity_id", entityID).
		Logger()

	if wf.Type == domain.WorkflowTypeApproval && len(wf.Actions.Approvers) > 0 {
		err := ctrl.tx.InTx(ctx, func(ctx context.Context) error {
			if err := ctrl.workflowStore.CreateExecution(ctx, exec); err != nil {
				return err
			}
			for i, approver := range wf.Actions.Approvers {
				if err := ctrl.workflowStore.CreateApproval(ctx, &domain.WorkflowApproval{
					ID:          uuid.NewString(),
					ExecutionID: exec.ID,
					ApproverID:  approver,
					Status:      domain.ApprovalPending,
					StepOrder:   i + 1,
					CreatedAt:   now,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start approval workflow: %w", err)
		}
		ctrl.metrics.RecordWorkflowExecution(string(exec.Status))
		logger.Info().Int("approvers", len(wf.Actions.Approvers)).Msg("workflow awaiting approval")
		return exec, nil
	}

	if err := ctrl.workflowStore.CreateExecution(ctx, exec); err != nil {
		return nil, err
	}
	return ctrl.finish(logger.WithContext(ctx), wf, exec)
}

// finish claims exec, applies the workflow's actions and records the outcome.
// An execution already finished by another caller is returned unchanged.
func (ctrl *DefaultController) finish(
	ctx context.Context,
	wf *domain.Workflow,
	exec *domain.WorkflowExecution,
) (*domain.WorkflowExecution, error) {
	claimed, err := ctrl.workflowStore.UpdateExecutionStatus(ctx, exec.ID,
		domain.ExecutionInProgress, domain.ExecutionCompleted, nil)
	if err != nil {
		return nil, err
	}
	if !claimed {
		zerolog.Ctx(ctx).Debug().Msg("workflow execution already finished")
		return ctrl.workflowStore.GetExecution(ctx, exec.ID)
	}

	runner := NewRunner(wf, exec, ctrl.workflowStore, ctrl.changer, ctrl.publisher)
	status := domain.ExecutionCompleted
	if err := runner.Run(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("workflow actions failed")
		status = domain.ExecutionFailed
		msg := err.Error()
		if _, err := ctrl.workflowStore.UpdateExecutionStatus(ctx, exec.ID,
			domain.ExecutionCompleted, domain.ExecutionFailed, &msg); err != nil {
			return nil, err
		}
	}
	ctrl.metrics.RecordWorkflowExecution(string(status))
	return ctrl.workflowStore.GetExecution(ctx, exec.ID)
}

// Trigger runs every active workflow listening for trigger on entityType whose
// conditions match data. Failures are logged and never reach the caller.
func (ctrl *DefaultController) Trigger(
	ctx context.Context,
	entityType domain.EntityType,
	entityID string,
	trigger domain.WorkflowTrigger,
	data map[string]any,
) {
	logger := zerolog.Ctx(ctx)
	workflows, err := ctrl.workflowStore.ListWorkflows(ctx, domain.WorkflowFilter{
		Status:     domain.WorkflowActive,
		Trigger:    trigger,
		EntityType: entityType,
	})
	if err != nil {
		logger.Error().Err(err).Str("trigger", string(trigger)).Msg("failed to load workflows for trigger")
		return
	}

	for i := range workflows {
		wf := &workflows[i]
		if !wf.Matches(data) {
			continue
		}
		if _, err := ctrl.Execute(ctx, wf.ID, entityType, entityID, data); err != nil {
			logger.Error().Err(err).
				Str("workflow_id", wf.ID).
				Str("entity_id", entityID).
				Msg("triggered workflow failed")
		}
	}
}

func (ctrl *DefaultController) Respond(
	ctx context.Context,
	approvalID, userID string,
	status domain.ApprovalStatus,
	comments string,
) (*domain.WorkflowApproval, error) {
	approval, err := ctrl.workflowStore.GetApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.ApproverID != userID {
		return nil, domain.NewForbidden("approval %s is assigned to another approver", approvalID)
	}
	if approval.Status != domain.ApprovalPending {
		return nil, domain.NewValidation("status", "approval has already been responded to")
	}
	if status != domain.ApprovalApproved && status != domain.ApprovalRejected {
		return nil, domain.NewValidation("status", "must be approved or rejected")
	}

	exec, err := ctrl.workflowStore.GetExecution(ctx, approval.ExecutionID)
	if err != nil {
		return nil, err
	}
	if exec.Status != domain.ExecutionInProgress {
		return nil, errNotAwaiting
	}

	if err := ctrl.workflowStore.RespondApproval(ctx, approvalID, status, comments, ctrl.now()); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("execution_id", exec.ID).
		Str("approval_id", approvalID).
		Logger()
	ctx = logger.WithContext(ctx)

	if status == domain.ApprovalRejected {
		msg := fmt.Sprintf("rejected by %s", userID)
		rejected, err := ctrl.workflowStore.UpdateExecutionStatus(ctx, exec.ID,
			domain.ExecutionInProgress, domain.ExecutionFailed, &msg)
		if err != nil {
			return nil, err
		}
		if !rejected {
			return nil, errNotAwaiting
		}
		ctrl.metrics.RecordWorkflowExecution(string(domain.ExecutionFailed))
		logger.Info().Msg("workflow approval rejected")
		return ctrl.workflowStore.GetApproval(ctx, approvalID)
	}

	approvals, err := ctrl.workflowStore.ListApprovals(ctx, exec.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range approvals {
		if a.Status != domain.ApprovalApproved {
			return ctrl.workflowStore.GetApproval(ctx, approvalID)
		}
	}

	wf, err := ctrl.workflowStore.GetWorkflow(ctx, exec.WorkflowID)
	if err != nil {
		return nil, err
	}
	if _, err := ctrl.finish(ctx, wf, exec); err != nil {
		return nil, err
	}
	logger.Info().Msg("workflow fully approved")
	return ctrl.workflowStore.GetApproval(ctx, approvalID)
}

func (ctrl *DefaultController) PendingApprovals(ctx context.Context, userID string) ([]domain.PendingApproval, error) {
	return ctrl.workflowStore.PendingApprovals(ctx, userID)
}

func (ctrl *DefaultController) Executions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	return ctrl.workflowStore.ListExecutions(ctx, filter)
}

func (ctrl *DefaultController) ExecutionDetail(ctx context.Context, id string) (*domain.ExecutionDetail, error) {
	exec, err := ctrl.workflowStore.GetExecution(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.ExecutionDetail{Execution: *exec}

	wf, err := ctrl.workflowStore.GetWorkflow(ctx, exec.WorkflowID)
	switch {
	case err == nil:
		detail.Workflow = wf
	case !isNotFound(err):
		return nil, err
	}

	detail.Approvals, err = ctrl.workflowStore.ListApprovals(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

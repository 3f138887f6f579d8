package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/events"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/workflow"
)

// Notification is published for notify actions.
type Notification struct {
	WorkflowID   string            `json:"workflow_id"`
	WorkflowName string            `json:"workflow_name"`
	ExecutionID  string            `json:"execution_id"`
	EntityType   domain.EntityType `json:"entity_type"`
	EntityID     string            `json:"entity_id"`
	Recipients   []string          `json:"recipients"`
}

// Runner applies the non-approval actions of one workflow execution.
type Runner struct {
	workflow      *domain.Workflow
	execution     *domain.WorkflowExecution
	workflowStore workflow.Store
	changers      func(domain.EntityType) (StatusChanger, bool)
	publisher     events.Publisher
}

func NewRunner(
	wf *domain.Workflow,
	exec *domain.WorkflowExecution,
	workflowStore workflow.Store,
	changers func(domain.EntityType) (StatusChanger, bool),
	publisher events.Publisher,
) *Runner {
	return &Runner{
		workflow:      wf,
		execution:     exec,
		workflowStore: workflowStore,
		changers:      changers,
		publisher:     publisher,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	actions := r.workflow.Actions

	if actions.ChangeStatus != "" {
		changer, ok := r.changers(r.execution.EntityType)
		if !ok {
			return fmt.Errorf("no status handler for entity type %q", r.execution.EntityType)
		}
		err := changer.UpdateStatus(ctx, r.execution.EntityID, actions.ChangeStatus, "workflow:"+r.workflow.ID)
		if err != nil {
			return fmt.Errorf("failed to change %s status: %w", r.execution.EntityType, err)
		}
		logger.Info().Str("status", actions.ChangeStatus).Msg("workflow changed entity status")
	}

	if actions.AssignTo != "" {
		if err := r.workflowStore.AssignExecution(ctx, r.execution.ID, actions.AssignTo); err != nil {
			return fmt.Errorf("failed to assign execution: %w", err)
		}
		r.execution.AssignedTo = actions.AssignTo
	}

	if len(actions.Notify) > 0 {
		logger.Info().Strs("recipients", actions.Notify).Str("workflow", r.workflow.Name).Msg("workflow notification")
		err := r.publisher.Publish(ctx, events.SubjectWorkflow+".notify", Notification{
			WorkflowID:   r.workflow.ID,
			WorkflowName: r.workflow.Name,
			ExecutionID:  r.execution.ID,
			EntityType:   r.execution.EntityType,
			EntityID:     r.execution.EntityID,
			Recipients:   actions.Notify,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to publish workflow notification")
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

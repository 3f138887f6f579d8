package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const (
	workflowsTable  = "workflows"
	executionsTable = "workflow_executions"
	approvalsTable  = "workflow_approvals"
)

var workflowColumns = []string{
	"id", "name", "description", "type", "status", "trigger_type", "entity_type", "conditions", "actions",
	"days_before_deadline", "created_by", "created_at", "updated_at",
}

var executionColumns = []string{
	"id", "workflow_id", "entity_type", "entity_id", "status", "input_data", "error_message",
	"assigned_to", "started_at", "completed_at", "created_at",
}

var approvalColumns = []string{
	"id", "execution_id", "approver_id", "status", "step_order", "COALESCE(comments, '')",
	"responded_at", "created_at",
}

type Store interface {
	CreateWorkflow(ctx context.Context, w *domain.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context, filter domain.WorkflowFilter) ([]domain.Workflow, error)
	UpdateWorkflow(ctx context.Context, w *domain.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	CreateExecution(ctx context.Context, e *domain.WorkflowExecution) error
	GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error)
	ListExecutions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error)
	UpdateExecutionStatus(ctx context.Context, id string, from, to domain.ExecutionStatus, errMsg *string) (bool, error)
	AssignExecution(ctx context.Context, id, assignee string) error

	CreateApproval(ctx context.Context, a *domain.WorkflowApproval) error
	GetApproval(ctx context.Context, id string) (*domain.WorkflowApproval, error)
	ListApprovals(ctx context.Context, executionID string) ([]domain.WorkflowApproval, error)
	RespondApproval(ctx context.Context, id string, status domain.ApprovalStatus, comments string, at time.Time) error
	PendingApprovals(ctx context.Context, approverID string) ([]domain.PendingApproval, error)
}

type defaultStore struct {
	db *sqldb.DB
}

func NewStore(db *sqldb.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) CreateWorkflow(ctx context.Context, w *domain.Workflow) error {
	row := adapters.MapDomainWorkflowToStore(w)
	q := s.db.Builder().Insert(workflowsTable).Columns(workflowColumns...).Values(
		row.ID, row.Name, row.Description, row.Type, row.Status, row.Trigger, row.EntityType, row.Conditions,
		row.Actions, row.DaysBeforeDeadline, row.CreatedBy, row.CreatedAt, row.UpdatedAt,
	)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert workflow: %w", err)
	}
	return nil
}

func (s *defaultStore) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(workflowColumns...).From(workflowsTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("workflow", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

func (s *defaultStore) ListWorkflows(ctx context.Context, f domain.WorkflowFilter) ([]domain.Workflow, error) {
	q := s.db.Builder().Select(workflowColumns...).From(workflowsTable).OrderBy("created_at DESC", "id")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Trigger != "" {
		q = q.Where(sq.Eq{"trigger_type": string(f.Trigger)})
	}
	if f.EntityType != "" {
		q = q.Where(sq.Eq{"entity_type": string(f.EntityType)})
	}

	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	items := []domain.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		items = append(items, *w)
	}
	return items, rows.Err()
}

func (s *defaultStore) UpdateWorkflow(ctx context.Context, w *domain.Workflow) error {
	row := adapters.MapDomainWorkflowToStore(w)
	res, err := s.db.Execute(ctx, s.db.Builder().Update(workflowsTable).
		Set("name", row.Name).
		Set("description", row.Description).
		Set("status", row.Status).
		Set("trigger_type", row.Trigger).
		Set("conditions", row.Conditions).
		Set("actions", row.Actions).
		Set("days_before_deadline", row.DaysBeforeDeadline).
		Set("updated_at", row.UpdatedAt).
		Where(sq.Eq{"id": w.ID}))
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	return sqldb.RowsAffected(res, "workflow", w.ID)
}

func (s *defaultStore) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(workflowsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return sqldb.RowsAffected(res, "workflow", id)
}

func (s *defaultStore) CreateExecution(ctx context.Context, e *domain.WorkflowExecution) error {
	row := adapters.MapDomainExecutionToStore(e)
	q := s.db.Builder().Insert(executionsTable).Columns(executionColumns...).Values(
		row.ID, row.WorkflowID, row.EntityType, row.EntityID, row.Status, row.InputData, row.ErrorMessage,
		row.AssignedTo, row.StartedAt, row.CompletedAt, row.CreatedAt,
	)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert workflow execution: %w", err)
	}
	return nil
}

func (s *defaultStore) GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(executionColumns...).From(executionsTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("workflow execution", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow execution: %w", err)
	}
	return e, nil
}

func (s *defaultStore) ListExecutions(ctx context.Context, f domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q := s.db.Builder().Select(executionColumns...).From(executionsTable).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))
	if f.WorkflowID != "" {
		q = q.Where(sq.Eq{"workflow_id": f.WorkflowID})
	}
	if f.EntityType != "" {
		q = q.Where(sq.Eq{"entity_type": string(f.EntityType)})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}

	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow executions: %w", err)
	}
	defer rows.Close()

	items := []domain.WorkflowExecution{}
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

// UpdateExecutionStatus moves an execution from one status to another and stamps
// completed_at when the new status is terminal. It reports false when the
// execution was no longer in the from status.
func (s *defaultStore) UpdateExecutionStatus(
	ctx context.Context,
	id string,
	from, to domain.ExecutionStatus,
	errMsg *string,
) (bool, error) {
	b := s.db.Builder().Update(executionsTable).Set("status", string(to))
	if errMsg != nil {
		b = b.Set("error_message", *errMsg)
	}
	switch to {
	case domain.ExecutionCompleted, domain.ExecutionFailed, domain.ExecutionCancelled:
		b = b.Set("completed_at", domain.Now())
	}
	res, err := s.db.Execute(ctx, b.Where(sq.Eq{"id": id, "status": string(from)}))
	if err != nil {
		return false, fmt.Errorf("failed to update workflow execution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		if _, err := s.GetExecution(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *defaultStore) AssignExecution(ctx context.Context, id, assignee string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(executionsTable).
		Set("assigned_to", sqldb.NullString(assignee)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to assign workflow execution: %w", err)
	}
	return sqldb.RowsAffected(res, "workflow execution", id)
}

func (s *defaultStore) CreateApproval(ctx context.Context, a *domain.WorkflowApproval) error {
	q := s.db.Builder().Insert(approvalsTable).
		Columns("id", "execution_id", "approver_id", "status", "step_order", "comments", "responded_at", "created_at").
		Values(
			a.ID, a.ExecutionID, a.ApproverID, string(a.Status), a.StepOrder, sqldb.NullString(a.Comments),
			sqldb.NullTime(a.RespondedAt), a.CreatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert workflow approval: %w", err)
	}
	return nil
}

func (s *defaultStore) GetApproval(ctx context.Context, id string) (*domain.WorkflowApproval, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(approvalColumns...).From(approvalsTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	a, err := scanApproval(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("workflow approval", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow approval: %w", err)
	}
	return a, nil
}

func (s *defaultStore) ListApprovals(ctx context.Context, executionID string) ([]domain.WorkflowApproval, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select(approvalColumns...).From(approvalsTable).
		Where(sq.Eq{"execution_id": executionID}).
		OrderBy("step_order"))
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow approvals: %w", err)
	}
	defer rows.Close()

	items := []domain.WorkflowApproval{}
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow approval: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// RespondApproval only transitions approvals that are still pending.
func (s *defaultStore) RespondApproval(
	ctx context.Context,
	id string,
	status domain.ApprovalStatus,
	comments string,
	at time.Time,
) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(approvalsTable).
		Set("status", string(status)).
		Set("comments", sqldb.NullString(comments)).
		Set("responded_at", domain.NormalizeTime(at)).
		Where(sq.Eq{"id": id, "status": string(domain.ApprovalPending)}))
	if err != nil {
		return fmt.Errorf("failed to respond to workflow approval: %w", err)
	}
	return sqldb.RowsAffected(res, "workflow approval", id)
}

func (s *defaultStore) PendingApprovals(ctx context.Context, approverID string) ([]domain.PendingApproval, error) {
	cols := make([]string, 0, len(approvalColumns)+len(executionColumns)+len(workflowColumns))
	cols = append(cols,
		"a.id", "a.execution_id", "a.approver_id", "a.status", "a.step_order", "COALESCE(a.comments, '')",
		"a.responded_at", "a.created_at",
	)
	for _, c := range executionColumns {
		cols = append(cols, "e."+c)
	}
	for _, c := range workflowColumns {
		cols = append(cols, "w."+c)
	}

	rows, err := s.db.Select(ctx, s.db.Builder().Select(cols...).
		From(approvalsTable+" a").
		Join(executionsTable+" e ON e.id = a.execution_id").
		Join(workflowsTable+" w ON w.id = e.workflow_id").
		Where(sq.Eq{"a.approver_id": approverID, "a.status": string(domain.ApprovalPending)}).
		Where(sq.Eq{"e.status": []string{string(domain.ExecutionPending), string(domain.ExecutionInProgress)}}).
		OrderBy("a.created_at", "a.step_order"))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending approvals: %w", err)
	}
	defer rows.Close()

	items := []domain.PendingApproval{}
	for rows.Next() {
		var (
			a         domain.WorkflowApproval
			status    string
			responded sql.NullTime
			e         store.WorkflowExecution
			w         store.Workflow
		)
		if err := rows.Scan(
			&a.ID, &a.ExecutionID, &a.ApproverID, &status, &a.StepOrder, &a.Comments, &responded, &a.CreatedAt,
			&e.ID, &e.WorkflowID, &e.EntityType, &e.EntityID, &e.Status, &e.InputData, &e.ErrorMessage,
			&e.AssignedTo, &e.StartedAt, &e.CompletedAt, &e.CreatedAt,
			&w.ID, &w.Name, &w.Description, &w.Type, &w.Status, &w.Trigger, &w.EntityType, &w.Conditions,
			&w.Actions, &w.DaysBeforeDeadline, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending approval: %w", err)
		}
		a.Status = domain.ApprovalStatus(status)
		a.RespondedAt = sqldb.TimePtr(responded)
		a.CreatedAt = a.CreatedAt.UTC()
		items = append(items, domain.PendingApproval{
			Approval:  a,
			Execution: *adapters.MapStoreExecutionToDomain(&e),
			Workflow:  *adapters.MapStoreWorkflowToDomain(&w),
		})
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(r scanner) (*domain.Workflow, error) {
	var w store.Workflow
	err := r.Scan(
		&w.ID, &w.Name, &w.Description, &w.Type, &w.Status, &w.Trigger, &w.EntityType, &w.Conditions,
		&w.Actions, &w.DaysBeforeDeadline, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreWorkflowToDomain(&w), nil
}

func scanExecution(r scanner) (*domain.WorkflowExecution, error) {
	var e store.WorkflowExecution
	err := r.Scan(
		&e.ID, &e.WorkflowID, &e.EntityType, &e.EntityID, &e.Status, &e.InputData, &e.ErrorMessage,
		&e.AssignedTo, &e.StartedAt, &e.CompletedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreExecutionToDomain(&e), nil
}

func scanApproval(r scanner) (*domain.WorkflowApproval, error) {
	var (
		a         domain.WorkflowApproval
		status    string
		responded sql.NullTime
	)
	err := r.Scan(&a.ID, &a.ExecutionID, &a.ApproverID, &status, &a.StepOrder, &a.Comments, &responded, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ApprovalStatus(status)
	a.RespondedAt = sqldb.TimePtr(responded)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

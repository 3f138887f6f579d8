package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/workflow"
)

type mockChanger struct{ mock.Mock }

func (m *mockChanger) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return m.Called(id, status, updatedBy).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject string, payload any) error {
	return m.Called(subject, payload).Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

var now = time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     workflow.Store
	changer   *mockChanger
	publisher *mockPublisher
	ctrl      *DefaultController
}

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := workflow.NewStore(db)
	require.NoError(t, err)

	f := &fixture{
		store:     store,
		changer:   new(mockChanger),
		publisher: new(mockPublisher),
	}
	f.ctrl = NewController(store, db, f.publisher, metrics.New())
	f.ctrl.now = func() time.Time { return now }
	f.ctrl.Register(domain.EntityPolicy, f.changer)
	return f
}

func (f *fixture) create(t *testing.T, w domain.Workflow) *domain.Workflow {
	created, err := f.ctrl.Create(context.Background(), &w)
	require.NoError(t, err)
	return created
}

func TestController_CRUD(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	w := f.create(t, domain.Workflow{
		Name:       "Publish on approval",
		Type:       domain.WorkflowTypeStatusChange,
		EntityType: domain.EntityPolicy,
		CreatedBy:  "admin",
	})
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, domain.WorkflowActive, w.Status)
	assert.Equal(t, domain.TriggerManual, w.Trigger)

	got, err := f.ctrl.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Publish on approval", got.Name)

	inactive := domain.WorkflowInactive
	desc := "only when reviewed"
	updated, err := f.ctrl.Update(ctx, w.ID, domain.WorkflowUpdate{
		Status:      &inactive,
		Description: &desc,
		Actions:     &domain.WorkflowActions{ChangeStatus: "published"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowInactive, updated.Status)
	assert.Equal(t, "published", updated.Actions.ChangeStatus)

	list, err := f.ctrl.List(ctx, domain.WorkflowFilter{Status: domain.WorkflowInactive})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.ctrl.Delete(ctx, w.ID))
	_, err = f.ctrl.Get(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ctrl.Update(ctx, "missing", domain.WorkflowUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestController_ChangeStatusValidation(t *testing.T) {
	tests := []struct {
		name       string
		entityType domain.EntityType
		status     string
		wantErr    error
	}{
		{name: "policy status", entityType: domain.EntityPolicy, status: "published"},
		{name: "control status", entityType: domain.EntityControl, status: "deprecated"},
		{name: "exception status", entityType: domain.EntityPolicyException, status: "expired"},
		{name: "obligation status", entityType: domain.EntityObligation, status: "met"},
		{name: "sop status", entityType: domain.EntitySOP, status: "archived"},
		{name: "unknown status", entityType: domain.EntityControl, status: "bogus", wantErr: domain.ErrInvalid},
		{name: "status of another entity type", entityType: domain.EntityControl, status: "published", wantErr: domain.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			_, err := f.ctrl.Create(context.Background(), &domain.Workflow{
				Name:       "Move status",
				Type:       domain.WorkflowTypeStatusChange,
				EntityType: tt.entityType,
				Actions:    domain.WorkflowActions{ChangeStatus: tt.status},
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("update rejects unknown status", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		w := f.create(t, domain.Workflow{
			Name:       "Publish",
			Type:       domain.WorkflowTypeStatusChange,
			EntityType: domain.EntityPolicy,
			Actions:    domain.WorkflowActions{ChangeStatus: "published"},
		})

		_, err := f.ctrl.Update(ctx, w.ID, domain.WorkflowUpdate{
			Actions: &domain.WorkflowActions{ChangeStatus: "bogus"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalid)

		got, err := f.ctrl.Get(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "published", got.Actions.ChangeStatus)
	})
}

func TestController_Execute(t *testing.T) {
	t.Run("inactive workflow", func(t *testing.T) {
		f := setupFixture(t)
		w := f.create(t, domain.Workflow{
			Name:       "off",
			Type:       domain.WorkflowTypeStatusChange,
			Status:     domain.WorkflowInactive,
			EntityType: domain.EntityPolicy,
		})

		_, err := f.ctrl.Execute(context.Background(), w.ID, "", "p1", nil)
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	t.Run("entity type mismatch", func(t *testing.T) {
		f := setupFixture(t)
		w := f.create(t, domain.Workflow{
			Name:       "Deprecate control",
			Type:       domain.WorkflowTypeStatusChange,
			EntityType: domain.EntityControl,
			Actions:    domain.WorkflowActions{ChangeStatus: "deprecated"},
		})

		_, err := f.ctrl.Execute(context.Background(), w.ID, domain.EntityPolicy, "p1", nil)
		assert.ErrorIs(t, err, domain.ErrInvalid)

		execs, err := f.ctrl.Executions(context.Background(), domain.ExecutionFilter{})
		require.NoError(t, err)
		assert.Empty(t, execs)
		f.changer.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing workflow", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.ctrl.Execute(context.Background(), "nope", "", "p1", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("applies actions", func(t *testing.T) {
		f := setupFixture(t)
		w := f.create(t, domain.Workflow{
			Name:       "Publish",
			Type:       domain.WorkflowTypeStatusChange,
			EntityType: domain.EntityPolicy,
			Actions: domain.WorkflowActions{
				ChangeStatus: "published",
				AssignTo:     "owner-1",
				Notify:       []string{"compliance@example.com"},
			},
		})
		f.changer.On("UpdateStatus", "p1", "published", "workflow:"+w.ID).Return(nil).Once()
		f.publisher.On("Publish", "grc.workflow.notify", mock.MatchedBy(func(n Notification) bool {
			return n.EntityID == "p1" && len(n.Recipients) == 1
		})).Return(errors.New("nats down")).Once()

		exec, err := f.ctrl.Execute(context.Background(), w.ID, "", "p1", map[string]any{"status": "approved"})
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionCompleted, exec.Status)
		assert.Equal(t, domain.EntityPolicy, exec.EntityType)
		assert.Equal(t, "owner-1", exec.AssignedTo)
		assert.NotNil(t, exec.CompletedAt)
		assert.Nil(t, exec.ErrorMessage)
		f.changer.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("action failure marks execution failed", func(t *testing.T) {
		f := setupFixture(t)
		w := f.create(t, domain.Workflow{
			Name:       "Close control",
			Type:       domain.WorkflowTypeStatusChange,
			EntityType: domain.EntityControl,
			Actions:    domain.WorkflowActions{ChangeStatus: "deprecated"},
		})

		exec, err := f.ctrl.Execute(context.Background(), w.ID, "", "c1", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionFailed, exec.Status)
		require.NotNil(t, exec.ErrorMessage)
		assert.Contains(t, *exec.ErrorMessage, "no status handler")
	})

	t.Run("approval workflow waits for approvers", func(t *testing.T) {
		f := setupFixture(t)
		w := f.create(t, domain.Workflow{
			Name:       "Policy approval",
			Type:       domain.WorkflowTypeApproval,
			EntityType: domain.EntityPolicy,
			Actions:    domain.WorkflowActions{Approvers: []string{"ciso", "cto"}, ChangeStatus: "approved"},
		})

		exec, err := f.ctrl.Execute(context.Background(), w.ID, "", "p1", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionInProgress, exec.Status)

		detail, err := f.ctrl.ExecutionDetail(context.Background(), exec.ID)
		require.NoError(t, err)
		require.Len(t, detail.Approvals, 2)
		assert.Equal(t, "ciso", detail.Approvals[0].ApproverID)
		assert.Equal(t, 1, detail.Approvals[0].StepOrder)
		assert.Equal(t, 2, detail.Approvals[1].StepOrder)
		require.NotNil(t, detail.Workflow)
		assert.Equal(t, w.ID, detail.Workflow.ID)
		f.changer.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestController_Respond(t *testing.T) {
	start := func(t *testing.T, f *fixture) *domain.WorkflowExecution {
		w := f.create(t, domain.Workflow{
			Name:       "Policy approval",
			Type:       domain.WorkflowTypeApproval,
			EntityType: domain.EntityPolicy,
			Actions:    domain.WorkflowActions{Approvers: []string{"ciso", "cto"}, ChangeStatus: "approved"},
		})
		exec, err := f.ctrl.Execute(context.Background(), w.ID, "", "p1", nil)
		require.NoError(t, err)
		return exec
	}
	approvalFor := func(t *testing.T, f *fixture, execID, approver string) string {
		detail, err := f.ctrl.ExecutionDetail(context.Background(), execID)
		require.NoError(t, err)
		for _, a := range detail.Approvals {
			if a.ApproverID == approver {
				return a.ID
			}
		}
		t.Fatalf("no approval for %s", approver)
		return ""
	}

	t.Run("all approved completes execution", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		exec := start(t, f)

		pending, err := f.ctrl.PendingApprovals(ctx, "ciso")
		require.NoError(t, err)
		require.Len(t, pending, 1)

		a, err := f.ctrl.Respond(ctx, approvalFor(t, f, exec.ID, "ciso"), "ciso", domain.ApprovalApproved, "ok")
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalApproved, a.Status)
		assert.Equal(t, "ok", a.Comments)

		got, err := f.store.GetExecution(ctx, exec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionInProgress, got.Status)

		f.changer.On("UpdateStatus", "p1", "approved", mock.Anything).Return(nil).Once()
		_, err = f.ctrl.Respond(ctx, approvalFor(t, f, exec.ID, "cto"), "cto", domain.ApprovalApproved, "")
		require.NoError(t, err)

		got, err = f.store.GetExecution(ctx, exec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionCompleted, got.Status)
		f.changer.AssertExpectations(t)
	})

	t.Run("actions apply once when finished twice", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		exec := start(t, f)
		wf, err := f.store.GetWorkflow(ctx, exec.WorkflowID)
		require.NoError(t, err)

		f.changer.On("UpdateStatus", "p1", "approved", mock.Anything).Return(nil).Once()
		first, err := f.ctrl.finish(ctx, wf, exec)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionCompleted, first.Status)

		second, err := f.ctrl.finish(ctx, wf, exec)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionCompleted, second.Status)
		f.changer.AssertNumberOfCalls(t, "UpdateStatus", 1)
	})

	t.Run("rejection fails execution", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		exec := start(t, f)

		_, err := f.ctrl.Respond(ctx, approvalFor(t, f, exec.ID, "cto"), "cto", domain.ApprovalRejected, "no")
		require.NoError(t, err)

		got, err := f.store.GetExecution(ctx, exec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ExecutionFailed, got.Status)
		require.NotNil(t, got.ErrorMessage)
		assert.Equal(t, "rejected by cto", *got.ErrorMessage)

		_, err = f.ctrl.Respond(ctx, approvalFor(t, f, exec.ID, "ciso"), "ciso", domain.ApprovalApproved, "")
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	tests := []struct {
		name    string
		user    string
		status  domain.ApprovalStatus
		twice   bool
		wantErr error
	}{
		{name: "wrong approver", user: "intern", status: domain.ApprovalApproved, wantErr: domain.ErrForbidden},
		{name: "bad status", user: "ciso", status: domain.ApprovalPending, wantErr: domain.ErrInvalid},
		{name: "already responded", user: "ciso", status: domain.ApprovalApproved, twice: true, wantErr: domain.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			ctx := context.Background()
			exec := start(t, f)
			id := approvalFor(t, f, exec.ID, "ciso")

			if tt.twice {
				_, err := f.ctrl.Respond(ctx, id, tt.user, tt.status, "")
				require.NoError(t, err)
			}
			_, err := f.ctrl.Respond(ctx, id, tt.user, tt.status, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing approval", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.ctrl.Respond(context.Background(), "missing", "ciso", domain.ApprovalApproved, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestController_Trigger(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.create(t, domain.Workflow{
		Name:       "Publish approved policies",
		Type:       domain.WorkflowTypeStatusChange,
		Trigger:    domain.TriggerOnStatusChange,
		EntityType: domain.EntityPolicy,
		Conditions: map[string]any{"status": "approved"},
		Actions:    domain.WorkflowActions{ChangeStatus: "published"},
	})
	f.create(t, domain.Workflow{
		Name:       "Other trigger",
		Type:       domain.WorkflowTypeStatusChange,
		Trigger:    domain.TriggerOnCreate,
		EntityType: domain.EntityPolicy,
		Actions:    domain.WorkflowActions{ChangeStatus: "draft"},
	})

	f.changer.On("UpdateStatus", "p1", "published", mock.Anything).Return(nil).Once()

	f.ctrl.Trigger(ctx, domain.EntityPolicy, "p2", domain.TriggerOnStatusChange, map[string]any{"status": "draft"})
	f.ctrl.Trigger(ctx, domain.EntityPolicy, "p1", domain.TriggerOnStatusChange, map[string]any{"status": "approved"})

	execs, err := f.ctrl.Executions(ctx, domain.ExecutionFilter{EntityType: domain.EntityPolicy})
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "p1", execs[0].EntityID)
	assert.Equal(t, domain.ExecutionCompleted, execs[0].Status)
	f.changer.AssertExpectations(t)
}

func TestController_ExecutionDetail(t *testing.T) {
	f := setupFixture(t)
	_, err := f.ctrl.ExecutionDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

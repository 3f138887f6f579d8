package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/workflow"
)

// mockController implements the calls exercised below.
type mockController struct {
	mock.Mock
	workflow.Controller
}

func (m *mockController) Execute(ctx context.Context, workflowID string, entityType domain.EntityType, entityID string, input map[string]any) (*domain.WorkflowExecution, error) {
	args := m.Called(ctx, workflowID, entityType, entityID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowExecution), args.Error(1)
}

func (m *mockController) Respond(ctx context.Context, approvalID, userID string, status domain.ApprovalStatus, comments string) (*domain.WorkflowApproval, error) {
	args := m.Called(ctx, approvalID, userID, status, comments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowApproval), args.Error(1)
}

func (m *mockController) Executions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.WorkflowExecution), args.Error(1)
}

func setupRouter(ctrl *mockController) http.Handler {
	h := NewHandler(ctrl)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "approver-1"})))
		})
	})
	r.Post("/workflows/{id}/execute", h.Execute)
	r.Get("/workflows/executions", h.Executions)
	r.Post("/workflows/approvals/{id}/respond", h.Respond)
	return r
}

func TestExecute(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("Execute", mock.Anything, "wf-1", domain.EntitySOP, "sop-1", map[string]any{"status": "draft"}).
		Return(&domain.WorkflowExecution{ID: "ex-1", WorkflowID: "wf-1", Status: domain.ExecutionInProgress}, nil)
	ctrl.On("Execute", mock.Anything, "wf-2", domain.EntitySOP, "sop-1", mock.Anything).
		Return(nil, domain.NewValidation("workflow", "workflow is not active"))
	router := setupRouter(ctrl)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workflows/wf-1/execute",
		strings.NewReader(`{"entity_type": "sop", "entity_id": "sop-1", "input_data": {"status": "draft"}}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"in_progress"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workflows/wf-2/execute",
		strings.NewReader(`{"entity_type": "sop", "entity_id": "sop-1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workflows/wf-1/execute",
		strings.NewReader(`{"entity_type": "invoice", "entity_id": "x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ctrl.AssertExpectations(t)
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockController)
		expectedStatus int
	}{
		{
			name: "approved",
			body: `{"status": "approved", "comments": "ok"}`,
			setupMock: func(m *mockController) {
				m.On("Respond", mock.Anything, "ap-1", "approver-1", domain.ApprovalApproved, "ok").
					Return(&domain.WorkflowApproval{ID: "ap-1", Status: domain.ApprovalApproved}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not the approver",
			body: `{"status": "rejected"}`,
			setupMock: func(m *mockController) {
				m.On("Respond", mock.Anything, "ap-1", "approver-1", domain.ApprovalRejected, "").
					Return(nil, domain.NewForbidden("approval is assigned to another user"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "pending is not a response",
			body:           `{"status": "pending"}`,
			setupMock:      func(*mockController) {},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(mockController)
			tt.setupMock(ctrl)

			rec := httptest.NewRecorder()
			setupRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
				"/workflows/approvals/ap-1/respond", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			ctrl.AssertExpectations(t)
		})
	}
}

func TestExecutions_DefaultLimit(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("Executions", mock.Anything, domain.ExecutionFilter{Status: domain.ExecutionFailed, Limit: 50}).
		Return([]domain.WorkflowExecution{{ID: "ex-1", Status: domain.ExecutionFailed}}, nil)

	rec := httptest.NewRecorder()
	setupRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workflows/executions?status=failed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"ex-1"`)
	ctrl.AssertExpectations(t)
}

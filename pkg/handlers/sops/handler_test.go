package sops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/sops"
)

type mockService struct {
	mock.Mock
	sops.Service
}

func (m *mockService) Publish(ctx context.Context, id, publishedBy string, assignTo []string) (*domain.SOP, error) {
	args := m.Called(ctx, id, publishedBy, assignTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SOP), args.Error(1)
}

func (m *mockService) Acknowledge(ctx context.Context, id, userID string) (*domain.SOPAssignment, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SOPAssignment), args.Error(1)
}

func (m *mockService) CreateSchedule(ctx context.Context, sch *domain.SOPSchedule) (*domain.SOPSchedule, error) {
	args := m.Called(ctx, sch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SOPSchedule), args.Error(1)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u1"})))
		})
	})
	r.Post("/sops/{id}/publish", h.Publish)
	r.Post("/sops/{id}/acknowledge", h.Acknowledge)
	r.Post("/sops/{id}/schedules", h.CreateSchedule)
	return r
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		assignTo       []string
		err            error
		expectedStatus int
	}{
		{
			name:           "without assignments",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "with assignments",
			body:           `{"assign_user_ids": ["u2", "u3"]}`,
			assignTo:       []string{"u2", "u3"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "already published",
			err:            domain.NewValidation("status", "sop is already published"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty assignee",
			body:           `{"assign_user_ids": [""]}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.expectedStatus == http.StatusOK {
				svc.On("Publish", mock.Anything, "s1", "u1", tt.assignTo).
					Return(&domain.SOP{ID: "s1", Status: domain.SOPPublished, Version: "1.0", VersionNumber: 1}, nil)
			} else if tt.err != nil {
				svc.On("Publish", mock.Anything, "s1", "u1", tt.assignTo).Return(nil, tt.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/sops/s1/publish", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if rec.Code == http.StatusOK {
				var body api.SOP
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "published", body.Status)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAcknowledge(t *testing.T) {
	svc := new(mockService)
	ackAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.On("Acknowledge", mock.Anything, "s1", "u1").
		Return(&domain.SOPAssignment{ID: "a1", SOPID: "s1", UserID: "u1", AcknowledgedAt: &ackAt}, nil)
	svc.On("Acknowledge", mock.Anything, "s2", "u1").
		Return(nil, domain.NewNotFound("sop assignment", "s2"))

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sops/s1/acknowledge", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.SOPAssignment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.AcknowledgedAt)
	assert.True(t, ackAt.Equal(*body.AcknowledgedAt))

	rec = httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sops/s2/acknowledge", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSchedule(t *testing.T) {
	t.Run("active schedule for the sop", func(t *testing.T) {
		svc := new(mockService)
		svc.On("CreateSchedule", mock.Anything, mock.MatchedBy(func(s *domain.SOPSchedule) bool {
			return s.SOPID == "s1" && s.IsActive && s.Frequency == domain.FrequencyWeekly && s.CreatedBy == "u1"
		})).Return(&domain.SOPSchedule{ID: "sch1", SOPID: "s1", Frequency: domain.FrequencyWeekly, IsActive: true}, nil)

		body := `{"frequency": "weekly", "next_execution_date": "2024-06-03T08:00:00Z"}`
		rec := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sops/s1/schedules", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown frequency", func(t *testing.T) {
		svc := new(mockService)
		body := `{"frequency": "hourly", "next_execution_date": "2024-06-03T08:00:00Z"}`
		rec := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sops/s1/schedules", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateSchedule", mock.Anything, mock.Anything)
	})
}

package frameworks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/frameworks"
)

type mockService struct {
	mock.Mock
	frameworks.Service
}

func (m *mockService) MapControl(ctx context.Context, fm *domain.FrameworkControlMapping) (*domain.FrameworkControlMapping, error) {
	args := m.Called(ctx, fm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FrameworkControlMapping), args.Error(1)
}

func (m *mockService) CoverageMatrix(ctx context.Context, frameworkID string) (domain.CoverageMatrix, error) {
	args := m.Called(ctx, frameworkID)
	return args.Get(0).(domain.CoverageMatrix), args.Error(1)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "officer"})))
		})
	})
	r.Post("/controls/{id}/framework-mappings", h.MapControl)
	r.Get("/frameworks/{id}/coverage-matrix", h.Coverage)
	return r
}

const requirementID = "5d2b1c8e-4a1f-4f61-9d3e-8a6c2b0f7e11"

func TestMapControl(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockService)
		expectedStatus int
	}{
		{
			name: "mapped",
			body: `{"requirement_id": "` + requirementID + `", "coverage_level": "partial"}`,
			setupMock: func(m *mockService) {
				m.On("MapControl", mock.Anything, &domain.FrameworkControlMapping{
					RequirementID: requirementID,
					ControlID:     "c1",
					CoverageLevel: domain.CoveragePartial,
					MappedBy:      "officer",
				}).Return(&domain.FrameworkControlMapping{ID: "m1", RequirementID: requirementID, ControlID: "c1"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "already mapped",
			body: `{"requirement_id": "` + requirementID + `", "coverage_level": "full"}`,
			setupMock: func(m *mockService) {
				m.On("MapControl", mock.Anything, mock.Anything).Return(nil, domain.NewConflict("control already mapped"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown coverage level",
			body:           `{"requirement_id": "` + requirementID + `", "coverage_level": "most"}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"requirement_id": "` + requirementID + `", "coverage_level": "full", "weight": 3}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/controls/c1/framework-mappings", strings.NewReader(tt.body))
			setupRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCoverage(t *testing.T) {
	svc := new(mockService)
	svc.On("CoverageMatrix", mock.Anything, "f1").Return(domain.CoverageMatrix{
		Framework: domain.Framework{ID: "f1", Name: "ISO 27001"},
		Requirements: []domain.RequirementCoverage{
			{
				Requirement: domain.FrameworkRequirement{ID: "r1", RequirementIdentifier: "A.5.1"},
				Status:      domain.RequirementMet,
			},
		},
		Total:             1,
		Met:               1,
		OverallCompliance: 100,
	}, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frameworks/f1/coverage-matrix", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.CoverageMatrix
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ISO 27001", body.Framework.Name)
	assert.Equal(t, 100, body.Summary.OverallCompliance)
	require.Len(t, body.Requirements, 1)
	assert.Equal(t, "met", body.Requirements[0].Status)
}

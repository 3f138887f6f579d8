package assetcontrol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/assetcontrol"
)

// mockService implements only what these tests call.
type mockService struct {
	mock.Mock
	assetcontrol.Service
}

func (m *mockService) MapBulk(ctx context.Context, controlID string, req assetcontrol.BulkMapRequest) ([]domain.ControlAssetMapping, error) {
	args := m.Called(ctx, controlID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ControlAssetMapping), args.Error(1)
}

func (m *mockService) AssetCompliance(ctx context.Context, asset domain.AssetRef) (domain.AssetCompliance, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(domain.AssetCompliance), args.Error(1)
}

func (m *mockService) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ImplementationStatus) (int, error) {
	args := m.Called(ctx, ids, status)
	return args.Int(0), args.Error(1)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Post("/controls/{id}/assets/bulk", h.MapBulk)
	r.Get("/assets/{assetType}/{assetID}/compliance", h.AssetCompliance)
	r.Patch("/control-mappings/status", h.BulkUpdateStatus)
	return r
}

func TestMapBulk(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"asset_type": "application", "asset_ids": ["a1", "a2"]}`,
			setupMock: func(m *mockService) {
				m.On("MapBulk", mock.Anything, "c1", mock.MatchedBy(func(req assetcontrol.BulkMapRequest) bool {
					return req.AssetType == domain.AssetApplication && len(req.AssetIDs) == 2 && req.MappedBy == "system"
				})).Return([]domain.ControlAssetMapping{{ID: "m1"}, {ID: "m2"}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "already mapped",
			body: `{"asset_type": "application", "asset_ids": ["a1"]}`,
			setupMock: func(m *mockService) {
				m.On("MapBulk", mock.Anything, "c1", mock.Anything).
					Return(nil, domain.NewConflict("1 of the requested assets are already mapped to this control"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "empty asset ids",
			body:           `{"asset_type": "application", "asset_ids": []}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown asset type",
			body:           `{"asset_type": "vehicle", "asset_ids": ["a1"]}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/controls/c1/assets/bulk", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAssetCompliance(t *testing.T) {
	svc := new(mockService)
	svc.On("AssetCompliance", mock.Anything, domain.AssetRef{Type: domain.AssetSoftware, ID: "s1"}).
		Return(domain.AssetCompliance{Asset: domain.AssetRef{Type: domain.AssetSoftware, ID: "s1"}, TotalControls: 4, CompliancePercentage: 50}, nil)
	router := setupRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/software/s1/compliance", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"compliance_percentage":50`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/vehicle/v1/compliance", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestBulkUpdateStatus(t *testing.T) {
	svc := new(mockService)
	svc.On("BulkUpdateStatus", mock.Anything, []string{"m1", "m2"}, domain.ImplImplemented).Return(2, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/control-mappings/status",
		strings.NewReader(`{"mapping_ids": ["m1", "m2"], "implementation_status": "implemented"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated": 2}`, rec.Body.String())
	svc.AssertExpectations(t)
}

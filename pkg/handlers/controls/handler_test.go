package controls

import (
	"context"
	"encoding/json"
	"io"
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
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, c *domain.UnifiedControl) (*domain.UnifiedControl, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnifiedControl), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id string) (*domain.UnifiedControl, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnifiedControl), args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter domain.ControlFilter) (domain.ListResult[domain.UnifiedControl], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.ListResult[domain.UnifiedControl]), args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id string, u domain.ControlUpdate) (*domain.UnifiedControl, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnifiedControl), args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id, deletedBy string) error {
	return m.Called(ctx, id, deletedBy).Error(0)
}

func (m *mockService) Stats(ctx context.Context) (domain.ControlLibraryStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ControlLibraryStats), args.Error(1)
}

func (m *mockService) Related(ctx context.Context, id string, limit int) ([]domain.UnifiedControl, error) {
	args := m.Called(ctx, id, limit)
	return args.Get(0).([]domain.UnifiedControl), args.Error(1)
}

func (m *mockService) ExportCSV(ctx context.Context, filter domain.ControlFilter, w io.Writer) error {
	args := m.Called(ctx, filter, w)
	_, _ = io.WriteString(w, "\"Control ID\"\n")
	return args.Error(0)
}

func (m *mockService) Import(ctx context.Context, rows []domain.UnifiedControl, createdBy string) (domain.ImportResult, error) {
	args := m.Called(ctx, rows, createdBy)
	return args.Get(0).(domain.ImportResult), args.Error(1)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "officer"})))
		})
	})
	r.Post("/controls", h.Create)
	r.Get("/controls", h.List)
	r.Get("/controls/library/statistics", h.Stats)
	r.Get("/controls/library/export", h.Export)
	r.Post("/controls/library/import", h.Import)
	r.Get("/controls/{id}", h.Get)
	r.Patch("/controls/{id}", h.Update)
	r.Delete("/controls/{id}", h.Delete)
	r.Get("/controls/{id}/related", h.Related)
	return r
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"control_identifier": "AC-1", "title": "Access policy", "control_type": "preventive"}`,
			setupMock: func(m *mockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.UnifiedControl) bool {
					return c.ControlIdentifier == "AC-1" && c.CreatedBy == "officer"
				})).Return(&domain.UnifiedControl{ID: "c1", ControlIdentifier: "AC-1", Title: "Access policy"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           `{"control_identifier": "AC-1"}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_request",
		},
		{
			name:           "unknown control type",
			body:           `{"control_identifier": "AC-1", "title": "x", "control_type": "magic"}`,
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_request",
		},
		{
			name: "duplicate identifier",
			body: `{"control_identifier": "AC-1", "title": "Access policy"}`,
			setupMock: func(m *mockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, domain.NewConflict("control AC-1 already exists"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				var body api.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.expectedCode, body.Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestList(t *testing.T) {
	svc := new(mockService)
	svc.On("List", mock.Anything, domain.ControlFilter{
		Status: domain.ControlActive,
		Search: "mfa",
		Sort:   domain.Sort{Field: "title", Order: domain.SortAsc},
		Page:   domain.Page{Page: 2, Limit: 10},
	}).Return(domain.ListResult[domain.UnifiedControl]{
		Items: []domain.UnifiedControl{{ID: "c1", Title: "MFA"}},
		Total: 11,
		Page:  domain.Page{Page: 2, Limit: 10},
	}, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/controls?status=active&search=mfa&sort=title:asc&page=2&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body api.ListResponse[api.Control]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, api.PageMeta{Page: 2, Limit: 10, Total: 11, TotalPages: 2}, body.Meta)
	svc.AssertExpectations(t)
}

func TestList_UnknownSortField(t *testing.T) {
	svc := new(mockService)
	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/controls?sort=password", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetAndDelete(t *testing.T) {
	svc := new(mockService)
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.NewNotFound("control", "missing"))
	svc.On("Delete", mock.Anything, "c1", "officer").Return(nil)

	router := setupRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/controls/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/controls/c1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.AssertExpectations(t)
}

func TestRelated(t *testing.T) {
	svc := new(mockService)
	svc.On("Related", mock.Anything, "c1", 5).Return([]domain.UnifiedControl{}, nil)
	svc.On("Related", mock.Anything, "c1", 2).Return([]domain.UnifiedControl{{ID: "c2"}}, nil)
	router := setupRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/controls/c1/related", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/controls/c1/related?limit=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestExportAndImport(t *testing.T) {
	svc := new(mockService)
	svc.On("ExportCSV", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.On("Import", mock.Anything, mock.MatchedBy(func(rows []domain.UnifiedControl) bool {
		return len(rows) == 2 && rows[1].ControlIdentifier == "AC-2"
	}), "officer").Return(domain.ImportResult{Created: 1, Skipped: 1, Errors: []domain.ImportRowError{}}, nil)
	router := setupRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/controls/library/export", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "controls-")

	body := `{"controls": [{"control_identifier": "AC-1", "title": "a"}, {"control_identifier": "AC-2", "title": "b"}]}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/controls/library/import", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created": 1, "skipped": 1, "errors": []}`, rec.Body.String())
	svc.AssertExpectations(t)
}

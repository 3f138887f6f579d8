package bulkdata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/bulkdata"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Export(ctx context.Context, resource bulkdata.Resource, format bulkdata.Format, w io.Writer) error {
	args := m.Called(ctx, resource, format, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "- code: AC\n")
	}
	return args.Error(0)
}

func (m *mockService) Import(ctx context.Context, resource bulkdata.Resource, format bulkdata.Format, r io.Reader, createdBy string) (domain.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, resource, format, string(body), createdBy)
	return args.Get(0).(domain.ImportResult), args.Error(1)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/data/export/{resource}", h.Export)
	r.Post("/data/import/{resource}", h.Import)
	return r
}

func TestExport(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*mockService)
		expectedStatus int
		expectedType   string
	}{
		{
			name:   "yaml domains",
			target: "/data/export/domains?format=yml",
			setupMock: func(m *mockService) {
				m.On("Export", mock.Anything, bulkdata.ResourceDomains, bulkdata.FormatYAML, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   "application/yaml",
		},
		{
			name:   "csv obligations rejected",
			target: "/data/export/obligations?format=csv",
			setupMock: func(m *mockService) {
				m.On("Export", mock.Anything, bulkdata.ResourceObligations, bulkdata.FormatCSV, mock.Anything).
					Return(domain.NewValidation("format", "csv export is only available for controls"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
		},
		{
			name:           "unknown resource",
			target:         "/data/export/assets",
			setupMock:      func(*mockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.expectedType)
			svc.AssertExpectations(t)
		})
	}
}

func TestImport(t *testing.T) {
	svc := new(mockService)
	svc.On("Import", mock.Anything, bulkdata.ResourceObligations, bulkdata.FormatJSON, `[{"title": "x"}]`, "system").
		Return(domain.ImportResult{Created: 1}, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/data/import/obligations",
		strings.NewReader(`[{"title": "x"}]`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":1`)
	svc.AssertExpectations(t)
}

package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "not found", err: domain.NewNotFound("control", "c1"), status: http.StatusNotFound, code: "not_found"},
		{name: "conflict", err: domain.NewConflict("control %s already exists", "AC-1"), status: http.StatusConflict, code: "conflict"},
		{name: "validation", err: domain.NewValidation("title", "is required"), status: http.StatusBadRequest, code: "invalid_request", message: "title: is required"},
		{name: "forbidden", err: domain.NewForbidden("not the approver"), status: http.StatusForbidden, code: "forbidden"},
		{name: "unauthorized", err: fmt.Errorf("token: %w", domain.ErrUnauthorized), status: http.StatusUnauthorized, code: "unauthorized"},
		{name: "internal", err: fmt.Errorf("database is locked"), status: http.StatusInternalServerError, code: "internal", message: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body api.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error.Message)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	decode := func(body string) error {
		var req api.CreateObligationRequest
		return Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &req)
	}

	assert.NoError(t, decode(`{"obligation_identifier": "OBL-1", "title": "Retain records"}`))
	assert.ErrorIs(t, decode(``), domain.ErrInvalid)
	assert.ErrorIs(t, decode(`{"title": `), domain.ErrInvalid)
	assert.ErrorIs(t, decode(`{"title": "missing identifier"}`), domain.ErrInvalid)
	assert.ErrorIs(t, decode(`{"obligation_identifier": "OBL-1", "title": "x", "unknown": 1}`), domain.ErrInvalid)

	err := decode(`{"obligation_identifier": "OBL-1", "title": "x", "priority": "urgent"}`)
	assert.EqualError(t, err, "priority: must be one of: low medium high critical")
}

func TestPage(t *testing.T) {
	p, err := Page(httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Page: 3, Limit: domain.MaxLimit}, p)

	p, err = Page(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Page: 1, Limit: domain.DefaultLimit}, p)

	_, err = Page(httptest.NewRequest(http.MethodGet, "/?page=two", nil))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestTime(t *testing.T) {
	got, err := Time(httptest.NewRequest(http.MethodGet, "/?from=2024-03-01", nil), "from")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", got.Format("2006-01-02T15:04:05Z07:00"))

	got, err = Time(httptest.NewRequest(http.MethodGet, "/", nil), "from")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Time(httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil), "from")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestList(t *testing.T) {
	res := domain.ListResult[int]{Items: []int{1, 2}, Total: 51, Page: domain.Page{Page: 1, Limit: 25}}
	out := List(res, func(i int) string { return fmt.Sprint(i) })
	assert.Equal(t, []string{"1", "2"}, out.Data)
	assert.Equal(t, 3, out.Meta.TotalPages)
}

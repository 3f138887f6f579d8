// Package httpx holds the request decoding and response encoding shared by handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const maxBodyBytes = 4 << 20

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidation("body", "request body is required")
		}
		return domain.NewValidation("body", "malformed JSON: "+err.Error())
	}
	return api.Validate(dst)
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps domain errors onto status codes. Unknown errors are logged
// and reported without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		message = "internal server error"
	}
	WriteJSON(w, r, status, api.ErrorResponse{Error: api.ErrorBody{Code: code, Message: message}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Page reads page and limit query parameters.
func Page(r *http.Request) (domain.Page, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page", 0)
	if err != nil {
		return domain.Page{}, err
	}
	limit, err := intParam(q.Get("limit"), "limit", 0)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Page: page, Limit: limit}.Normalize(), nil
}

// Int parses an optional integer query parameter.
func Int(r *http.Request, name string, def int) (int, error) {
	return intParam(r.URL.Query().Get(name), name, def)
}

func intParam(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidation(name, "must be an integer")
	}
	return n, nil
}

// Time parses an optional RFC3339 or YYYY-MM-DD query parameter.
func Time(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.NewValidation(name, fmt.Sprintf("invalid time %q", raw))
}

// Bool parses an optional boolean query parameter.
func Bool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidation(name, "must be true or false")
	}
	return &b, nil
}

// List wraps mapped items with pagination metadata.
func List[T, R any](res domain.ListResult[T], mapFn func(T) R) api.ListResponse[R] {
	out := api.ListResponse[R]{
		Data: make([]R, 0, len(res.Items)),
		Meta: api.PageMeta{
			Page:       res.Page.Page,
			Limit:      res.Page.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages(),
		},
	}
	for _, item := range res.Items {
		out.Data = append(out.Data, mapFn(item))
	}
	return out
}

// Map converts a slice with mapFn, never returning nil.
func Map[T, R any](items []T, mapFn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, mapFn(item))
	}
	return out
}

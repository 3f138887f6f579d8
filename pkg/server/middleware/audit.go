package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

// maxCapturedBody bounds how much of a response is kept to find its id.
const maxCapturedBody = 64 << 10

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type Auditor struct {
	rec Recorder
}

func NewAuditor(rec Recorder) *Auditor {
	return &Auditor{rec: rec}
}

// Record logs a successful call of the wrapped route as action on entityType.
// The entity id comes from the {id} URL parameter or, failing that, the id
// field of the JSON response.
func (a *Auditor) Record(action domain.AuditAction, entityType, description string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body limitedBuffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusBadRequest {
				return
			}

			ctx := r.Context()
			entry := &domain.AuditLog{
				UserID:      auth.UserID(ctx),
				Action:      action,
				EntityType:  entityType,
				EntityID:    entityID(r, body.Bytes()),
				Description: description,
				IPAddress:   clientIP(r),
				UserAgent:   r.UserAgent(),
				RequestID:   middleware.GetReqID(ctx),
				StatusCode:  status,
			}
			if u, ok := auth.UserFrom(ctx); ok {
				entry.UserEmail = u.Email
			}
			if err := a.rec.Record(ctx, entry); err != nil {
				zerolog.Ctx(ctx).Error().
					Err(err).
					Str("action", string(action)).
					Str("entity_type", entityType).
					Msg("failed to record audit entry")
			}
		})
	}
}

func entityID(r *http.Request, body []byte) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	var resp struct {
		ID string `json:"id"`
	}
	if len(body) > 0 && json.Unmarshal(body, &resp) == nil {
		return resp.ID
	}
	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limitedBuffer keeps at most maxCapturedBody bytes and drops the rest.
type limitedBuffer struct {
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := maxCapturedBody - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

package audit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/audit"
)

type Handler struct {
	svc audit.Service
}

func NewHandler(svc audit.Service) *Handler {
	return &Handler{svc: svc}
}

func filterFrom(r *http.Request) (domain.AuditFilter, error) {
	q := r.URL.Query()
	f := domain.AuditFilter{
		UserID:     q.Get("user_id"),
		Action:     domain.AuditAction(q.Get("action")),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Search:     q.Get("search"),
	}
	var err error
	if f.From, err = httpx.Time(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = httpx.Time(r, "to"); err != nil {
		return f, err
	}
	f.Page, err = httpx.Page(r)
	return f, err
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainAuditLogToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainAuditLogToApi(*entry))
}

func (h *Handler) EntityTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.EntityTrail(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "entityID"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(entries, adapters.MapDomainAuditLogToApi))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.Time(r, "from")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	to, err := httpx.Time(r, "to")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	stats, err := h.svc.Stats(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainAuditStatsToApi(stats))
}

// Export streams the filtered log as CSV. Errors after the first byte can
// only be logged.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=audit-logs-%s.csv", time.Now().UTC().Format("20060102")))
	if err := h.svc.ExportCSV(r.Context(), filter, w); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to export audit logs")
	}
}

func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	days, err := httpx.Int(r, "days", 0)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	deleted, err := h.svc.Cleanup(r.Context(), days)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, api.RetentionResult{Deleted: deleted, RetentionDays: days})
}

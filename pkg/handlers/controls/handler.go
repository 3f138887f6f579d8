package controls

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/controls"
)

const defaultRelatedLimit = 5

type Handler struct {
	svc controls.Service
}

func NewHandler(svc controls.Service) *Handler {
	return &Handler{svc: svc}
}

func filterFrom(r *http.Request) (domain.ControlFilter, error) {
	q := r.URL.Query()
	f := domain.ControlFilter{
		ControlType:          domain.ControlType(q.Get("control_type")),
		Status:               domain.ControlStatus(q.Get("status")),
		ImplementationStatus: domain.ImplementationStatus(q.Get("implementation_status")),
		DomainID:             q.Get("domain_id"),
		ControlOwnerID:       q.Get("control_owner_id"),
		Search:               q.Get("search"),
	}
	var err error
	if f.Sort, err = domain.ParseSort(q.Get("sort"), domain.ControlSortFields, domain.Sort{}); err != nil {
		return f, err
	}
	f.Page, err = httpx.Page(r)
	return f, err
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateControlRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c := adapters.MapCreateControlToDomain(req)
	c.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &c)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainControlToApi(*created))
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
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainControlToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainControlToApi(*c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateControlRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateControlToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainControlToApi(*c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainLibraryStatsToApi(stats))
}

func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.Int(r, "limit", defaultRelatedLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := h.svc.Related(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainControlToApi))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=controls-%s.csv", time.Now().UTC().Format("20060102")))
	if err := h.svc.ExportCSV(r.Context(), filter, w); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to export controls")
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req api.ImportControlsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rows := make([]domain.UnifiedControl, 0, len(req.Controls))
	for _, c := range req.Controls {
		rows = append(rows, adapters.MapCreateControlToDomain(c))
	}
	result, err := h.svc.Import(r.Context(), rows, auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainImportResultToApi(result))
}

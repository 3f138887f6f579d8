package obligations

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/obligations"
)

type Handler struct {
	svc obligations.Service
}

func NewHandler(svc obligations.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateObligationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	o := adapters.MapCreateObligationToDomain(req)
	o.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &o)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainObligationToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.List(r.Context(), domain.ObligationFilter{
		Status:   domain.ObligationStatus(q.Get("status")),
		Priority: domain.Priority(q.Get("priority")),
		OwnerID:  q.Get("owner_id"),
		Search:   q.Get("search"),
		Page:     page,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainObligationToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainObligationToApi(*o))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateObligationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateObligationToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	o, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainObligationToApi(*o))
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
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainObligationStatsToApi(stats))
}

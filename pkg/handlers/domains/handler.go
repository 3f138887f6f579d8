package domains

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/services/domains"
)

type Handler struct {
	svc domains.Service
}

func NewHandler(svc domains.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDomainRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d := adapters.MapCreateDomainToDomain(req)
	d.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &d)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainControlDomainToApi(*created))
}

// List returns active domains unless ?all=true is given.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := httpx.Bool(r, "all")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := h.svc.List(r.Context(), all == nil || !*all)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainControlDomainToApi))
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.svc.Tree(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(roots, adapters.MapDomainNodeToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainControlDomainToApi(*d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateDomainRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateDomainToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	d, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainControlDomainToApi(*d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

package policies

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/policies"
)

type Handler struct {
	svc policies.Service
}

func NewHandler(svc policies.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePolicyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p := adapters.MapCreatePolicyToDomain(req)
	p.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainPolicyToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.List(r.Context(), domain.PolicyFilter{
		Status:     domain.PolicyStatus(q.Get("status")),
		PolicyType: q.Get("policy_type"),
		OwnerID:    q.Get("owner_id"),
		Search:     q.Get("search"),
		Page:       page,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainPolicyToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainPolicyToApi(*p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdatePolicyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdatePolicyToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainPolicyToApi(*p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Acknowledge(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainPolicyAckToApi(*a))
}

func (h *Handler) Acknowledgments(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Acknowledgments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainPolicyAckToApi))
}

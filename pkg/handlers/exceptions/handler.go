package exceptions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/exceptions"
)

type Handler struct {
	svc exceptions.Service
}

func NewHandler(svc exceptions.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateExceptionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	e := adapters.MapCreateExceptionToDomain(req)
	e.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &e)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainExceptionToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.List(r.Context(), domain.ExceptionFilter{
		Status:    domain.ExceptionStatus(q.Get("status")),
		PolicyID:  q.Get("policy_id"),
		RiskLevel: domain.RiskLevel(q.Get("risk_level")),
		Search:    q.Get("search"),
		Page:      page,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainExceptionToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainExceptionToApi(*e))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateExceptionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateExceptionToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	e, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainExceptionToApi(*e))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	var req api.ExceptionDecisionRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
	}
	e, err := h.svc.Decide(r.Context(), chi.URLParam(r, "id"), domain.ExceptionDecision{
		Approve:   approve,
		DecidedBy: auth.UserID(r.Context()),
		Notes:     req.Notes,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainExceptionToApi(*e))
}

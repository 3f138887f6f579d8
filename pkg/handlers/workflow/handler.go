package workflow

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/workflow"
)

const defaultHistoryLimit = 50

type Handler struct {
	ctrl workflow.Controller
}

func NewHandler(ctrl workflow.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateWorkflowRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	wf := adapters.MapCreateWorkflowToDomain(req)
	wf.CreatedBy = auth.UserID(r.Context())

	created, err := h.ctrl.Create(r.Context(), &wf)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainWorkflowToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.ctrl.List(r.Context(), domain.WorkflowFilter{
		Status:     domain.WorkflowStatus(q.Get("status")),
		Trigger:    domain.WorkflowTrigger(q.Get("trigger")),
		EntityType: domain.EntityType(q.Get("entity_type")),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainWorkflowToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wf, err := h.ctrl.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainWorkflowToApi(*wf))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateWorkflowRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	wf, err := h.ctrl.Update(r.Context(), chi.URLParam(r, "id"), adapters.MapUpdateWorkflowToDomain(req))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainWorkflowToApi(*wf))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var req api.ExecuteWorkflowRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	exec, err := h.ctrl.Execute(r.Context(), chi.URLParam(r, "id"),
		domain.EntityType(req.EntityType), req.EntityID, req.InputData)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainExecutionToApi(*exec))
}

func (h *Handler) Executions(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.Int(r, "limit", defaultHistoryLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	q := r.URL.Query()
	items, err := h.ctrl.Executions(r.Context(), domain.ExecutionFilter{
		WorkflowID: q.Get("workflow_id"),
		EntityType: domain.EntityType(q.Get("entity_type")),
		Status:     domain.ExecutionStatus(q.Get("status")),
		Limit:      limit,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainExecutionToApi))
}

func (h *Handler) ExecutionDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.ctrl.ExecutionDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainExecutionDetailToApi(*d))
}

func (h *Handler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	items, err := h.ctrl.PendingApprovals(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainPendingApprovalToApi))
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req api.RespondApprovalRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	a, err := h.ctrl.Respond(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()),
		domain.ApprovalStatus(req.Status), req.Comments)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainApprovalToApi(*a))
}

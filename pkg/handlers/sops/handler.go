package sops

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/sops"
)

type Handler struct {
	svc sops.Service
}

func NewHandler(svc sops.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSOPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sop := adapters.MapCreateSOPToDomain(req)
	sop.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &sop)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainSOPToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.SOPFilter{
		Status:   domain.SOPStatus(q.Get("status")),
		Category: q.Get("category"),
		OwnerID:  q.Get("owner_id"),
		Search:   q.Get("search"),
	}
	var err error
	if filter.Sort, err = domain.ParseSort(q.Get("sort"), domain.SOPSortFields, domain.Sort{}); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if filter.Page, err = httpx.Page(r); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainSOPToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sop, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainSOPToApi(*sop))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateSOPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateSOPToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	sop, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainSOPToApi(*sop))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	var req api.PublishSOPRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
	}
	sop, err := h.svc.Publish(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()), req.AssignUserIDs)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainSOPToApi(*sop))
}

func (h *Handler) Assigned(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Assigned(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainAssignedSOPToApi))
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Acknowledge(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainAssignmentToApi(*a))
}

func (h *Handler) PublicationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PublicationStats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainPublicationStatsToApi(stats))
}

func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Versions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainSOPVersionToApi))
}

func (h *Handler) CreateStep(w http.ResponseWriter, r *http.Request) {
	var req api.CreateStepRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	step := adapters.MapCreateStepToDomain(chi.URLParam(r, "id"), req)

	created, err := h.svc.CreateStep(r.Context(), &step)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainStepToApi(*created))
}

func (h *Handler) Steps(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Steps(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainStepToApi))
}

func (h *Handler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStepRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	step, err := h.svc.UpdateStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"),
		adapters.MapUpdateStepToDomain(req))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainStepToApi(*step))
}

func (h *Handler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req api.CreateScheduleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := h.svc.CreateSchedule(r.Context(), &domain.SOPSchedule{
		SOPID:             chi.URLParam(r, "id"),
		Frequency:         domain.Frequency(req.Frequency),
		NextExecutionDate: req.NextExecutionDate.UTC(),
		AssignedUserID:    req.AssignedUserID,
		IsActive:          true,
		CreatedBy:         auth.UserID(r.Context()),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainScheduleToApi(*created))
}

func (h *Handler) Schedules(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Schedules(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainScheduleToApi))
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteSchedule(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "scheduleID"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req api.CreateFeedbackRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := h.svc.CreateFeedback(r.Context(), &domain.SOPFeedback{
		SOPID:   chi.URLParam(r, "id"),
		UserID:  auth.UserID(r.Context()),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainFeedbackToApi(*created))
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Feedback(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainFeedbackToApi))
}

func (h *Handler) FeedbackSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.FeedbackSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainFeedbackSummaryToApi(s))
}

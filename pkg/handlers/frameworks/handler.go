package frameworks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/frameworks"
)

type Handler struct {
	svc frameworks.Service
}

func NewHandler(svc frameworks.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateFrameworkRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f := adapters.MapCreateFrameworkToDomain(req)
	f.CreatedBy = auth.UserID(r.Context())

	created, err := h.svc.Create(r.Context(), &f)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainFrameworkToApi(*created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.List(r.Context(), domain.FrameworkFilter{
		Status: domain.FrameworkStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
		Page:   page,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainFrameworkToApi))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainFrameworkToApi(*f))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateFrameworkRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u := adapters.MapUpdateFrameworkToDomain(req)
	u.UpdatedBy = auth.UserID(r.Context())

	f, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainFrameworkToApi(*f))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req api.CreateRequirementRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	requirement := adapters.MapCreateRequirementToDomain(chi.URLParam(r, "id"), req)

	created, err := h.svc.CreateRequirement(r.Context(), &requirement)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainRequirementToApi(*created))
}

func (h *Handler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListRequirements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainRequirementToApi))
}

func (h *Handler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteRequirement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "requirementID"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CoverageMatrix(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainCoverageMatrixToApi(m))
}

func (h *Handler) MapControl(w http.ResponseWriter, r *http.Request) {
	var req api.CreateFrameworkMappingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	m, err := h.svc.MapControl(r.Context(), &domain.FrameworkControlMapping{
		RequirementID: req.RequirementID,
		ControlID:     chi.URLParam(r, "id"),
		CoverageLevel: domain.CoverageLevel(req.CoverageLevel),
		MappingNotes:  req.MappingNotes,
		MappedBy:      auth.UserID(r.Context()),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainFrameworkMappingToApi(*m))
}

func (h *Handler) MapControlBulk(w http.ResponseWriter, r *http.Request) {
	var req api.BulkFrameworkMappingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := h.svc.MapControlBulk(r.Context(), chi.URLParam(r, "id"), frameworks.BulkMappingRequest{
		RequirementIDs: req.RequirementIDs,
		CoverageLevel:  domain.CoverageLevel(req.CoverageLevel),
		MappingNotes:   req.MappingNotes,
		MappedBy:       auth.UserID(r.Context()),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, httpx.Map(created, adapters.MapDomainFrameworkMappingToApi))
}

func (h *Handler) ControlMappings(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ControlMappings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainFrameworkMappingToApi))
}

func (h *Handler) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateFrameworkMappingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var coverage *domain.CoverageLevel
	if req.CoverageLevel != nil {
		c := domain.CoverageLevel(*req.CoverageLevel)
		coverage = &c
	}
	m, err := h.svc.UpdateMapping(r.Context(), chi.URLParam(r, "mappingID"), coverage, req.MappingNotes)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainFrameworkMappingToApi(*m))
}

func (h *Handler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMapping(r.Context(), chi.URLParam(r, "mappingID")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

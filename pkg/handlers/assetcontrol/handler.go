package assetcontrol

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/services/assetcontrol"
)

type Handler struct {
	svc assetcontrol.Service
}

func NewHandler(svc assetcontrol.Service) *Handler {
	return &Handler{svc: svc}
}

func assetRef(r *http.Request) (domain.AssetRef, error) {
	ref := domain.AssetRef{
		Type: domain.AssetType(chi.URLParam(r, "assetType")),
		ID:   chi.URLParam(r, "assetID"),
	}
	for _, t := range domain.AssetTypes {
		if t == ref.Type {
			return ref, nil
		}
	}
	return ref, domain.NewValidation("asset_type", "unknown asset type "+string(ref.Type))
}

func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	var req api.MapAssetRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	m := adapters.MapMapAssetRequestToDomain(chi.URLParam(r, "id"), req)
	m.MappedBy = auth.UserID(r.Context())

	created, err := h.svc.Map(r.Context(), &m)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, adapters.MapDomainMappingToApi(*created))
}

func (h *Handler) MapBulk(w http.ResponseWriter, r *http.Request) {
	var req api.MapAssetsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := h.svc.MapBulk(r.Context(), chi.URLParam(r, "id"), assetcontrol.BulkMapRequest{
		AssetType:            domain.AssetType(req.AssetType),
		AssetIDs:             req.AssetIDs,
		ImplementationStatus: domain.ImplementationStatus(req.ImplementationStatus),
		ImplementationNotes:  req.ImplementationNotes,
		MappedBy:             auth.UserID(r.Context()),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, httpx.Map(created, adapters.MapDomainMappingToApi))
}

func (h *Handler) ListByControl(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.ListByControl(r.Context(), chi.URLParam(r, "id"), page)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainMappingToApi))
}

func (h *Handler) ListByAsset(w http.ResponseWriter, r *http.Request) {
	ref, err := assetRef(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.ListByAsset(r.Context(), ref, page)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainMappingToApi))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ref, err := assetRef(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req api.UpdateMappingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	m, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), ref, adapters.MapUpdateMappingToDomain(req))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainMappingToApi(*m))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ref, err := assetRef(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), ref); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req api.BulkStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	n, err := h.svc.BulkUpdateStatus(r.Context(), req.MappingIDs, domain.ImplementationStatus(req.ImplementationStatus))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, api.BulkStatusResult{Updated: n})
}

func (h *Handler) AssetCompliance(w http.ResponseWriter, r *http.Request) {
	ref, err := assetRef(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.svc.AssetCompliance(r.Context(), ref)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainAssetComplianceToApi(c))
}

func (h *Handler) ControlEffectiveness(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.ControlEffectiveness(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainEffectivenessToApi(e))
}

func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.svc.Matrix(r.Context(), domain.MatrixFilter{
		AssetType:            domain.AssetType(q.Get("asset_type")),
		DomainID:             q.Get("domain_id"),
		ImplementationStatus: domain.ImplementationStatus(q.Get("implementation_status")),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(rows, adapters.MapDomainMatrixRowToApi))
}

func (h *Handler) MatrixStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.MatrixStats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, adapters.MapDomainMatrixStatsToApi(stats))
}

func (h *Handler) Unmapped(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.Unmapped(r.Context(), page)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.List(res, adapters.MapDomainControlToApi))
}

func (h *Handler) ComplianceByAssetType(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ComplianceByAssetType(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, httpx.Map(items, adapters.MapDomainAssetTypeComplianceToApi))
}

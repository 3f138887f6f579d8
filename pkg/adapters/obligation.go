package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateObligationToDomain(req api.CreateObligationRequest) domain.Obligation {
	return domain.Obligation{
		ObligationIdentifier: req.ObligationIdentifier,
		Title:                req.Title,
		Description:          req.Description,
		Source:               req.Source,
		SourceReference:      req.SourceReference,
		OwnerID:              req.OwnerID,
		Status:               domain.ObligationStatus(req.Status),
		Priority:             domain.Priority(req.Priority),
		DueDate:              req.DueDate,
	}
}

func MapUpdateObligationToDomain(req api.UpdateObligationRequest) domain.ObligationUpdate {
	u := domain.ObligationUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Source:          req.Source,
		SourceReference: req.SourceReference,
		OwnerID:         req.OwnerID,
		DueDate:         req.DueDate,
	}
	if req.Status != nil {
		v := domain.ObligationStatus(*req.Status)
		u.Status = &v
	}
	if req.Priority != nil {
		v := domain.Priority(*req.Priority)
		u.Priority = &v
	}
	return u
}

func MapDomainObligationToApi(o domain.Obligation) api.Obligation {
	return api.Obligation{
		ID:                   o.ID,
		ObligationIdentifier: o.ObligationIdentifier,
		Title:                o.Title,
		Description:          o.Description,
		Source:               o.Source,
		SourceReference:      o.SourceReference,
		OwnerID:              o.OwnerID,
		Status:               string(o.Status),
		Priority:             string(o.Priority),
		DueDate:              o.DueDate,
		CreatedBy:            o.CreatedBy,
		UpdatedBy:            o.UpdatedBy,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func MapDomainObligationToCreate(o domain.Obligation) api.CreateObligationRequest {
	return api.CreateObligationRequest{
		ObligationIdentifier: o.ObligationIdentifier,
		Title:                o.Title,
		Description:          o.Description,
		Source:               o.Source,
		SourceReference:      o.SourceReference,
		OwnerID:              o.OwnerID,
		Status:               string(o.Status),
		Priority:             string(o.Priority),
		DueDate:              o.DueDate,
	}
}

func MapDomainObligationStatsToApi(s domain.ObligationStats) api.ObligationStats {
	return api.ObligationStats{
		Total:      s.Total,
		ByStatus:   s.ByStatus,
		ByPriority: s.ByPriority,
		Overdue:    s.Overdue,
	}
}

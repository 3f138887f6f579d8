package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateExceptionToDomain(req api.CreateExceptionRequest) domain.PolicyException {
	return domain.PolicyException{
		ExceptionIdentifier: req.ExceptionIdentifier,
		PolicyID:            req.PolicyID,
		Title:               req.Title,
		Justification:       req.Justification,
		RiskLevel:           domain.RiskLevel(req.RiskLevel),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
	}
}

func MapUpdateExceptionToDomain(req api.UpdateExceptionRequest) domain.ExceptionUpdate {
	u := domain.ExceptionUpdate{
		Title:         req.Title,
		Justification: req.Justification,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.RiskLevel != nil {
		v := domain.RiskLevel(*req.RiskLevel)
		u.RiskLevel = &v
	}
	return u
}

func MapDomainExceptionToApi(e domain.PolicyException) api.PolicyException {
	return api.PolicyException{
		ID:                  e.ID,
		ExceptionIdentifier: e.ExceptionIdentifier,
		PolicyID:            e.PolicyID,
		Title:               e.Title,
		Justification:       e.Justification,
		RiskLevel:           string(e.RiskLevel),
		Status:              string(e.Status),
		RequestedBy:         e.RequestedBy,
		ApprovedBy:          e.ApprovedBy,
		ApprovedAt:          e.ApprovedAt,
		DecisionNotes:       e.DecisionNotes,
		StartDate:           e.StartDate,
		EndDate:             e.EndDate,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreatePolicyToDomain(req api.CreatePolicyRequest) domain.Policy {
	return domain.Policy{
		Title:         req.Title,
		PolicyType:    req.PolicyType,
		Status:        domain.PolicyStatus(req.Status),
		OwnerID:       req.OwnerID,
		Version:       req.Version,
		Content:       req.Content,
		EffectiveDate: req.EffectiveDate,
	}
}

func MapUpdatePolicyToDomain(req api.UpdatePolicyRequest) domain.PolicyUpdate {
	u := domain.PolicyUpdate{
		Title:         req.Title,
		PolicyType:    req.PolicyType,
		OwnerID:       req.OwnerID,
		Version:       req.Version,
		Content:       req.Content,
		EffectiveDate: req.EffectiveDate,
	}
	if req.Status != nil {
		v := domain.PolicyStatus(*req.Status)
		u.Status = &v
	}
	return u
}

func MapDomainPolicyToApi(p domain.Policy) api.Policy {
	return api.Policy{
		ID:            p.ID,
		Title:         p.Title,
		PolicyType:    p.PolicyType,
		Status:        string(p.Status),
		OwnerID:       p.OwnerID,
		Version:       p.Version,
		Content:       p.Content,
		EffectiveDate: p.EffectiveDate,
		CreatedBy:     p.CreatedBy,
		UpdatedBy:     p.UpdatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func MapDomainPolicyAckToApi(a domain.PolicyAcknowledgment) api.PolicyAcknowledgment {
	return api.PolicyAcknowledgment{
		PolicyID:       a.PolicyID,
		UserID:         a.UserID,
		AcknowledgedAt: a.AcknowledgedAt,
	}
}

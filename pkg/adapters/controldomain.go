package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateDomainToDomain(req api.CreateDomainRequest) domain.ControlDomain {
	d := domain.ControlDomain{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	return d
}

func MapUpdateDomainToDomain(req api.UpdateDomainRequest) domain.ControlDomainUpdate {
	return domain.ControlDomainUpdate{
		Name:         req.Name,
		Description:  req.Description,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	}
}

func MapDomainControlDomainToApi(d domain.ControlDomain) api.ControlDomain {
	return api.ControlDomain{
		ID:           d.ID,
		Name:         d.Name,
		Code:         d.Code,
		Description:  d.Description,
		ParentID:     d.ParentID,
		DisplayOrder: d.DisplayOrder,
		IsActive:     d.IsActive,
		CreatedBy:    d.CreatedBy,
		UpdatedBy:    d.UpdatedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func MapDomainControlDomainToCreate(d domain.ControlDomain) api.CreateDomainRequest {
	active := d.IsActive
	return api.CreateDomainRequest{
		Name:         d.Name,
		Code:         d.Code,
		Description:  d.Description,
		ParentID:     d.ParentID,
		DisplayOrder: d.DisplayOrder,
		IsActive:     &active,
	}
}

func MapDomainNodeToApi(n *domain.DomainNode) *api.DomainNode {
	out := &api.DomainNode{
		ControlDomain: MapDomainControlDomainToApi(n.Domain),
		ControlCount:  n.ControlCount,
		Children:      make([]*api.DomainNode, 0, len(n.Children)),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, MapDomainNodeToApi(c))
	}
	return out
}

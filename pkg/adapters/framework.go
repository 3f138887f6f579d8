package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateFrameworkToDomain(req api.CreateFrameworkRequest) domain.Framework {
	return domain.Framework{
		FrameworkCode:    req.FrameworkCode,
		Name:             req.Name,
		Version:          req.Version,
		IssuingAuthority: req.IssuingAuthority,
		Description:      req.Description,
		EffectiveDate:    req.EffectiveDate,
		Status:           domain.FrameworkStatus(req.Status),
		Tags:             req.Tags,
	}
}

func MapUpdateFrameworkToDomain(req api.UpdateFrameworkRequest) domain.FrameworkUpdate {
	u := domain.FrameworkUpdate{
		Name:             req.Name,
		Version:          req.Version,
		IssuingAuthority: req.IssuingAuthority,
		Description:      req.Description,
		EffectiveDate:    req.EffectiveDate,
		Tags:             req.Tags,
	}
	if req.Status != nil {
		v := domain.FrameworkStatus(*req.Status)
		u.Status = &v
	}
	return u
}

func MapDomainFrameworkToApi(f domain.Framework) api.Framework {
	return api.Framework{
		ID:               f.ID,
		FrameworkCode:    f.FrameworkCode,
		Name:             f.Name,
		Version:          f.Version,
		IssuingAuthority: f.IssuingAuthority,
		Description:      f.Description,
		EffectiveDate:    f.EffectiveDate,
		Status:           string(f.Status),
		Tags:             strs(f.Tags),
		CreatedBy:        f.CreatedBy,
		UpdatedBy:        f.UpdatedBy,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func MapCreateRequirementToDomain(frameworkID string, req api.CreateRequirementRequest) domain.FrameworkRequirement {
	return domain.FrameworkRequirement{
		FrameworkID:           frameworkID,
		RequirementIdentifier: req.RequirementIdentifier,
		RequirementText:       req.RequirementText,
		Domain:                req.Domain,
		Category:              req.Category,
		Priority:              req.Priority,
		DisplayOrder:          req.DisplayOrder,
	}
}

func MapDomainRequirementToApi(r domain.FrameworkRequirement) api.FrameworkRequirement {
	return api.FrameworkRequirement{
		ID:                    r.ID,
		FrameworkID:           r.FrameworkID,
		RequirementIdentifier: r.RequirementIdentifier,
		RequirementText:       r.RequirementText,
		Domain:                r.Domain,
		Category:              r.Category,
		Priority:              r.Priority,
		DisplayOrder:          r.DisplayOrder,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func MapDomainFrameworkMappingToApi(m domain.FrameworkControlMapping) api.FrameworkControlMapping {
	return api.FrameworkControlMapping{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		ControlID:     m.ControlID,
		CoverageLevel: string(m.CoverageLevel),
		MappingNotes:  m.MappingNotes,
		MappedBy:      m.MappedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func MapDomainCoverageMatrixToApi(m domain.CoverageMatrix) api.CoverageMatrix {
	out := api.CoverageMatrix{
		Framework:    MapDomainFrameworkToApi(m.Framework),
		Requirements: make([]api.RequirementCoverage, 0, len(m.Requirements)),
		Summary: api.CoverageSummary{
			Total:             m.Total,
			Met:               m.Met,
			PartiallyMet:      m.PartiallyMet,
			NotMet:            m.NotMet,
			NotApplicable:     m.NotApplicable,
			OverallCompliance: m.OverallCompliance,
		},
		Domains: make([]api.DomainCoverage, 0, len(m.Domains)),
	}
	for _, rc := range m.Requirements {
		row := api.RequirementCoverage{
			RequirementID:         rc.Requirement.ID,
			RequirementIdentifier: rc.Requirement.RequirementIdentifier,
			RequirementText:       rc.Requirement.RequirementText,
			Domain:                rc.Requirement.Domain,
			Status:                string(rc.Status),
			Controls:              make([]api.RequirementControl, 0, len(rc.Controls)),
		}
		for _, c := range rc.Controls {
			row.Controls = append(row.Controls, api.RequirementControl{
				ControlID:            c.ControlID,
				ControlIdentifier:    c.ControlIdentifier,
				CoverageLevel:        string(c.CoverageLevel),
				ImplementationStatus: string(c.ImplementationStatus),
			})
		}
		out.Requirements = append(out.Requirements, row)
	}
	for _, d := range m.Domains {
		out.Domains = append(out.Domains, api.DomainCoverage{
			Domain:        d.Domain,
			Total:         d.Total,
			Met:           d.Met,
			PartiallyMet:  d.PartiallyMet,
			NotMet:        d.NotMet,
			NotApplicable: d.NotApplicable,
		})
	}
	return out
}

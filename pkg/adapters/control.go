package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateControlToDomain(req api.CreateControlRequest) domain.UnifiedControl {
	return domain.UnifiedControl{
		ControlIdentifier:    req.ControlIdentifier,
		Title:                req.Title,
		Description:          req.Description,
		ControlType:          domain.ControlType(req.ControlType),
		ControlCategory:      req.ControlCategory,
		DomainID:             req.DomainID,
		Complexity:           domain.Level(req.Complexity),
		CostImpact:           domain.Level(req.CostImpact),
		Status:               domain.ControlStatus(req.Status),
		ImplementationStatus: domain.ImplementationStatus(req.ImplementationStatus),
		ControlOwnerID:       req.ControlOwnerID,
		ControlProcedures:    req.ControlProcedures,
		TestingProcedures:    req.TestingProcedures,
		Tags:                 req.Tags,
	}
}

func MapUpdateControlToDomain(req api.UpdateControlRequest) domain.ControlUpdate {
	u := domain.ControlUpdate{
		Title:             req.Title,
		Description:       req.Description,
		ControlCategory:   req.ControlCategory,
		DomainID:          req.DomainID,
		ControlOwnerID:    req.ControlOwnerID,
		ControlProcedures: req.ControlProcedures,
		TestingProcedures: req.TestingProcedures,
		Tags:              req.Tags,
	}
	if req.ControlType != nil {
		v := domain.ControlType(*req.ControlType)
		u.ControlType = &v
	}
	if req.Complexity != nil {
		v := domain.Level(*req.Complexity)
		u.Complexity = &v
	}
	if req.CostImpact != nil {
		v := domain.Level(*req.CostImpact)
		u.CostImpact = &v
	}
	if req.Status != nil {
		v := domain.ControlStatus(*req.Status)
		u.Status = &v
	}
	if req.ImplementationStatus != nil {
		v := domain.ImplementationStatus(*req.ImplementationStatus)
		u.ImplementationStatus = &v
	}
	return u
}

func MapDomainControlToApi(c domain.UnifiedControl) api.Control {
	return api.Control{
		ID:                   c.ID,
		ControlIdentifier:    c.ControlIdentifier,
		Title:                c.Title,
		Description:          c.Description,
		ControlType:          string(c.ControlType),
		ControlCategory:      c.ControlCategory,
		DomainID:             c.DomainID,
		Complexity:           string(c.Complexity),
		CostImpact:           string(c.CostImpact),
		Status:               string(c.Status),
		ImplementationStatus: string(c.ImplementationStatus),
		ControlOwnerID:       c.ControlOwnerID,
		ControlProcedures:    c.ControlProcedures,
		TestingProcedures:    c.TestingProcedures,
		Tags:                 strs(c.Tags),
		CreatedBy:            c.CreatedBy,
		UpdatedBy:            c.UpdatedBy,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// MapDomainControlToCreate renders a control in its importable shape.
func MapDomainControlToCreate(c domain.UnifiedControl) api.CreateControlRequest {
	return api.CreateControlRequest{
		ControlIdentifier:    c.ControlIdentifier,
		Title:                c.Title,
		Description:          c.Description,
		ControlType:          string(c.ControlType),
		ControlCategory:      c.ControlCategory,
		DomainID:             c.DomainID,
		Complexity:           string(c.Complexity),
		CostImpact:           string(c.CostImpact),
		Status:               string(c.Status),
		ImplementationStatus: string(c.ImplementationStatus),
		ControlOwnerID:       c.ControlOwnerID,
		ControlProcedures:    c.ControlProcedures,
		TestingProcedures:    c.TestingProcedures,
		Tags:                 c.Tags,
	}
}

func MapDomainLibraryStatsToApi(s domain.ControlLibraryStats) api.ControlLibraryStats {
	return api.ControlLibraryStats{
		Total:              s.Total,
		Active:             s.Active,
		Draft:              s.Draft,
		Deprecated:         s.Deprecated,
		ByType:             s.ByType,
		ByComplexity:       s.ByComplexity,
		ImplementationRate: s.ImplementationRate,
	}
}

func MapDomainImportResultToApi(r domain.ImportResult) api.ImportResult {
	out := api.ImportResult{Created: r.Created, Skipped: r.Skipped, Errors: []api.ImportRowError{}}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, api.ImportRowError{Row: e.Row, Error: e.Error})
	}
	return out
}

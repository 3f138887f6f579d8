package frameworks

import (
	"math"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

const otherDomain = "Other"

// RequirementStatusFor classifies one requirement from its control mappings.
func RequirementStatusFor(mappings []domain.RequirementMapping) domain.RequirementStatus {
	if len(mappings) == 0 {
		return domain.RequirementNotMet
	}

	var full, partial, notApplicable, implemented, inProgress int
	for _, m := range mappings {
		switch m.CoverageLevel {
		case domain.CoverageFull:
			full++
		case domain.CoveragePartial:
			partial++
		case domain.CoverageNotApplicable:
			notApplicable++
		}
		switch m.ImplementationStatus {
		case domain.ImplImplemented:
			implemented++
		case domain.ImplInProgress:
			inProgress++
		}
	}

	switch {
	case notApplicable == len(mappings):
		return domain.RequirementNotApplicable
	case full > 0 && implemented == full:
		return domain.RequirementMet
	case implemented > 0 || inProgress > 0 || partial > 0:
		return domain.RequirementPartiallyMet
	default:
		return domain.RequirementNotMet
	}
}

// BuildCoverageMatrix evaluates every requirement of a framework. Requirements
// keep their given order and domains appear in order of first use.
func BuildCoverageMatrix(
	fw domain.Framework,
	requirements []domain.FrameworkRequirement,
	mappings []domain.RequirementMapping,
) domain.CoverageMatrix {
	byRequirement := make(map[string][]domain.RequirementMapping)
	for _, m := range mappings {
		byRequirement[m.RequirementID] = append(byRequirement[m.RequirementID], m)
	}

	matrix := domain.CoverageMatrix{
		Framework:    fw,
		Requirements: make([]domain.RequirementCoverage, 0, len(requirements)),
		Total:        len(requirements),
		Domains:      []domain.DomainCoverage{},
	}
	domainIdx := make(map[string]int)

	for _, req := range requirements {
		controls := byRequirement[req.ID]
		if controls == nil {
			controls = []domain.RequirementMapping{}
		}
		status := RequirementStatusFor(controls)
		matrix.Requirements = append(matrix.Requirements, domain.RequirementCoverage{
			Requirement: req,
			Status:      status,
			Controls:    controls,
		})

		name := req.Domain
		if name == "" {
			name = otherDomain
		}
		i, ok := domainIdx[name]
		if !ok {
			i = len(matrix.Domains)
			domainIdx[name] = i
			matrix.Domains = append(matrix.Domains, domain.DomainCoverage{Domain: name})
		}
		d := &matrix.Domains[i]
		d.Total++

		switch status {
		case domain.RequirementMet:
			matrix.Met++
			d.Met++
		case domain.RequirementPartiallyMet:
			matrix.PartiallyMet++
			d.PartiallyMet++
		case domain.RequirementNotApplicable:
			matrix.NotApplicable++
			d.NotApplicable++
		default:
			matrix.NotMet++
			d.NotMet++
		}
	}

	if matrix.Total > 0 {
		matrix.OverallCompliance = roundPercent(matrix.Met+matrix.NotApplicable, matrix.Total)
	}
	return matrix
}

func roundPercent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}

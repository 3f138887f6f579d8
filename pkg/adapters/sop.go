package adapters

import (
	"strconv"

	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func MapCreateSOPToDomain(req api.CreateSOPRequest) domain.SOP {
	return domain.SOP{
		SOPIdentifier:   req.SOPIdentifier,
		Title:           req.Title,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Purpose:         req.Purpose,
		Scope:           req.Scope,
		Content:         req.Content,
		Version:         req.Version,
		Status:          domain.SOPStatus(req.Status),
		OwnerID:         req.OwnerID,
		ReviewFrequency: req.ReviewFrequency,
		NextReviewDate:  req.NextReviewDate,
		Tags:            req.Tags,
		ControlIDs:      req.ControlIDs,
	}
}

func MapUpdateSOPToDomain(req api.UpdateSOPRequest) domain.SOPUpdate {
	u := domain.SOPUpdate{
		Title:           req.Title,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Purpose:         req.Purpose,
		Scope:           req.Scope,
		Content:         req.Content,
		Version:         req.Version,
		OwnerID:         req.OwnerID,
		ReviewFrequency: req.ReviewFrequency,
		NextReviewDate:  req.NextReviewDate,
		Tags:            req.Tags,
		ControlIDs:      req.ControlIDs,
		ChangeSummary:   req.ChangeSummary,
	}
	if req.Status != nil {
		v := domain.SOPStatus(*req.Status)
		u.Status = &v
	}
	return u
}

func MapDomainSOPToApi(s domain.SOP) api.SOP {
	return api.SOP{
		ID:              s.ID,
		SOPIdentifier:   s.SOPIdentifier,
		Title:           s.Title,
		Category:        s.Category,
		Subcategory:     s.Subcategory,
		Purpose:         s.Purpose,
		Scope:           s.Scope,
		Content:         s.Content,
		Version:         s.Version,
		VersionNumber:   s.VersionNumber,
		Status:          string(s.Status),
		OwnerID:         s.OwnerID,
		ReviewFrequency: s.ReviewFrequency,
		NextReviewDate:  s.NextReviewDate,
		ApprovalDate:    s.ApprovalDate,
		PublishedDate:   s.PublishedDate,
		Tags:            strs(s.Tags),
		ControlIDs:      strs(s.ControlIDs),
		CreatedBy:       s.CreatedBy,
		UpdatedBy:       s.UpdatedBy,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func MapDomainSOPVersionToApi(v domain.SOPVersion) api.SOPVersion {
	return api.SOPVersion{
		ID:            v.ID,
		SOPID:         v.SOPID,
		VersionNumber: v.VersionNumber,
		Version:       v.Version,
		Title:         v.Title,
		Content:       v.Content,
		ChangeSummary: v.ChangeSummary,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}

func MapCreateStepToDomain(sopID string, req api.CreateStepRequest) domain.SOPStep {
	return domain.SOPStep{
		SOPID:            sopID,
		StepNumber:       req.StepNumber,
		Title:            req.Title,
		Description:      req.Description,
		ExpectedDuration: req.ExpectedDuration,
		ResponsibleRole:  req.ResponsibleRole,
		IsCritical:       req.IsCritical,
	}
}

func MapUpdateStepToDomain(req api.UpdateStepRequest) domain.SOPStepUpdate {
	return domain.SOPStepUpdate{
		StepNumber:       req.StepNumber,
		Title:            req.Title,
		Description:      req.Description,
		ExpectedDuration: req.ExpectedDuration,
		ResponsibleRole:  req.ResponsibleRole,
		IsCritical:       req.IsCritical,
	}
}

func MapDomainStepToApi(s domain.SOPStep) api.SOPStep {
	return api.SOPStep{
		ID:               s.ID,
		SOPID:            s.SOPID,
		StepNumber:       s.StepNumber,
		Title:            s.Title,
		Description:      s.Description,
		ExpectedDuration: s.ExpectedDuration,
		ResponsibleRole:  s.ResponsibleRole,
		IsCritical:       s.IsCritical,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func MapDomainScheduleToApi(s domain.SOPSchedule) api.SOPSchedule {
	return api.SOPSchedule{
		ID:                s.ID,
		SOPID:             s.SOPID,
		Frequency:         string(s.Frequency),
		NextExecutionDate: s.NextExecutionDate,
		AssignedUserID:    s.AssignedUserID,
		IsActive:          s.IsActive,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func MapDomainFeedbackToApi(f domain.SOPFeedback) api.SOPFeedback {
	return api.SOPFeedback{
		ID:        f.ID,
		SOPID:     f.SOPID,
		UserID:    f.UserID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func MapDomainFeedbackSummaryToApi(s domain.FeedbackSummary) api.FeedbackSummary {
	dist := make(map[string]int, len(s.Distribution))
	for k, v := range s.Distribution {
		dist[strconv.Itoa(k)] = v
	}
	return api.FeedbackSummary{
		SOPID:         s.SOPID,
		Count:         s.Count,
		AverageRating: s.AverageRating,
		Distribution:  dist,
	}
}

func MapDomainAssignmentToApi(a domain.SOPAssignment) api.SOPAssignment {
	return api.SOPAssignment{
		ID:             a.ID,
		SOPID:          a.SOPID,
		UserID:         a.UserID,
		AssignedBy:     a.AssignedBy,
		AssignedAt:     a.AssignedAt,
		AcknowledgedAt: a.AcknowledgedAt,
	}
}

func MapDomainAssignedSOPToApi(a domain.AssignedSOP) api.AssignedSOP {
	return api.AssignedSOP{
		SOP:        MapDomainSOPToApi(a.SOP),
		Assignment: MapDomainAssignmentToApi(a.Assignment),
	}
}

func MapDomainPublicationStatsToApi(s domain.PublicationStats) api.PublicationStats {
	return api.PublicationStats{
		TotalPublished:     s.TotalPublished,
		PublishedThisMonth: s.PublishedThisMonth,
		PublishedThisYear:  s.PublishedThisYear,
		TotalAssignments:   s.TotalAssignments,
		Acknowledged:       s.Acknowledged,
		AcknowledgmentRate: s.AcknowledgmentRate,
	}
}

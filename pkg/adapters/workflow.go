package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
)

type storedActions struct {
	Approvers    []string `json:"approvers,omitempty"`
	ChangeStatus string   `json:"change_status,omitempty"`
	AssignTo     string   `json:"assign_to,omitempty"`
	Notify       []string `json:"notify,omitempty"`
}

func MapStoreWorkflowToDomain(w *store.Workflow) *domain.Workflow {
	if w == nil {
		return nil
	}

	var actions storedActions
	fromNullJSON(w.Actions, &actions)

	dw := &domain.Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description.String,
		Type:        domain.WorkflowType(w.Type),
		Status:      domain.WorkflowStatus(w.Status),
		Trigger:     domain.WorkflowTrigger(w.Trigger),
		EntityType:  domain.EntityType(w.EntityType),
		Actions: domain.WorkflowActions{
			Approvers:    actions.Approvers,
			ChangeStatus: actions.ChangeStatus,
			AssignTo:     actions.AssignTo,
			Notify:       actions.Notify,
		},
		DaysBeforeDeadline: w.DaysBeforeDeadline,
		CreatedBy:          w.CreatedBy.String,
		CreatedAt:          w.CreatedAt.UTC(),
		UpdatedAt:          w.UpdatedAt.UTC(),
	}
	fromNullJSON(w.Conditions, &dw.Conditions)
	return dw
}

func MapDomainWorkflowToStore(dw *domain.Workflow) *store.Workflow {
	row := &store.Workflow{
		ID:          dw.ID,
		Name:        dw.Name,
		Description: toNullString(dw.Description),
		Type:        string(dw.Type),
		Status:      string(dw.Status),
		Trigger:     string(dw.Trigger),
		EntityType:  string(dw.EntityType),
		Actions: toNullJSON(storedActions{
			Approvers:    dw.Actions.Approvers,
			ChangeStatus: dw.Actions.ChangeStatus,
			AssignTo:     dw.Actions.AssignTo,
			Notify:       dw.Actions.Notify,
		}),
		DaysBeforeDeadline: dw.DaysBeforeDeadline,
		CreatedBy:          toNullString(dw.CreatedBy),
		CreatedAt:          dw.CreatedAt,
		UpdatedAt:          dw.UpdatedAt,
	}
	if len(dw.Conditions) > 0 {
		row.Conditions = toNullJSON(dw.Conditions)
	}
	return row
}

func MapStoreExecutionToDomain(e *store.WorkflowExecution) *domain.WorkflowExecution {
	if e == nil {
		return nil
	}
	de := &domain.WorkflowExecution{
		ID:          e.ID,
		WorkflowID:  e.WorkflowID,
		EntityType:  domain.EntityType(e.EntityType),
		EntityID:    e.EntityID,
		Status:      domain.ExecutionStatus(e.Status),
		AssignedTo:  e.AssignedTo.String,
		StartedAt:   fromNullTime(e.StartedAt),
		CompletedAt: fromNullTime(e.CompletedAt),
		CreatedAt:   e.CreatedAt.UTC(),
	}
	if e.ErrorMessage.Valid {
		msg := e.ErrorMessage.String
		de.ErrorMessage = &msg
	}
	fromNullJSON(e.InputData, &de.InputData)
	return de
}

func MapDomainExecutionToStore(de *domain.WorkflowExecution) *store.WorkflowExecution {
	row := &store.WorkflowExecution{
		ID:          de.ID,
		WorkflowID:  de.WorkflowID,
		EntityType:  string(de.EntityType),
		EntityID:    de.EntityID,
		Status:      string(de.Status),
		AssignedTo:  toNullString(de.AssignedTo),
		StartedAt:   toNullTime(de.StartedAt),
		CompletedAt: toNullTime(de.CompletedAt),
		CreatedAt:   de.CreatedAt,
	}
	if de.ErrorMessage != nil {
		row.ErrorMessage.String = *de.ErrorMessage
		row.ErrorMessage.Valid = true
	}
	if len(de.InputData) > 0 {
		row.InputData = toNullJSON(de.InputData)
	}
	return row
}

func MapApiWorkflowActionsToDomain(a api.WorkflowActions) domain.WorkflowActions {
	return domain.WorkflowActions{
		Approvers:    a.Approvers,
		ChangeStatus: a.ChangeStatus,
		AssignTo:     a.AssignTo,
		Notify:       a.Notify,
	}
}

func MapCreateWorkflowToDomain(req api.CreateWorkflowRequest) domain.Workflow {
	return domain.Workflow{
		Name:               req.Name,
		Description:        req.Description,
		Type:               domain.WorkflowType(req.Type),
		Status:             domain.WorkflowStatus(req.Status),
		Trigger:            domain.WorkflowTrigger(req.Trigger),
		EntityType:         domain.EntityType(req.EntityType),
		Conditions:         req.Conditions,
		Actions:            MapApiWorkflowActionsToDomain(req.Actions),
		DaysBeforeDeadline: req.DaysBeforeDeadline,
	}
}

func MapUpdateWorkflowToDomain(req api.UpdateWorkflowRequest) domain.WorkflowUpdate {
	u := domain.WorkflowUpdate{
		Name:               req.Name,
		Description:        req.Description,
		Conditions:         req.Conditions,
		DaysBeforeDeadline: req.DaysBeforeDeadline,
	}
	if req.Status != nil {
		s := domain.WorkflowStatus(*req.Status)
		u.Status = &s
	}
	if req.Trigger != nil {
		t := domain.WorkflowTrigger(*req.Trigger)
		u.Trigger = &t
	}
	if req.Actions != nil {
		a := MapApiWorkflowActionsToDomain(*req.Actions)
		u.Actions = &a
	}
	return u
}

func MapDomainWorkflowToApi(w domain.Workflow) api.Workflow {
	return api.Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Type:        string(w.Type),
		Status:      string(w.Status),
		Trigger:     string(w.Trigger),
		EntityType:  string(w.EntityType),
		Conditions:  w.Conditions,
		Actions: api.WorkflowActions{
			Approvers:    w.Actions.Approvers,
			ChangeStatus: w.Actions.ChangeStatus,
			AssignTo:     w.Actions.AssignTo,
			Notify:       w.Actions.Notify,
		},
		DaysBeforeDeadline: w.DaysBeforeDeadline,
		CreatedBy:          w.CreatedBy,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

func MapDomainExecutionToApi(e domain.WorkflowExecution) api.WorkflowExecution {
	return api.WorkflowExecution{
		ID:           e.ID,
		WorkflowID:   e.WorkflowID,
		EntityType:   string(e.EntityType),
		EntityID:     e.EntityID,
		Status:       string(e.Status),
		InputData:    e.InputData,
		ErrorMessage: e.ErrorMessage,
		AssignedTo:   e.AssignedTo,
		StartedAt:    e.StartedAt,
		CompletedAt:  e.CompletedAt,
		CreatedAt:    e.CreatedAt,
	}
}

func MapDomainApprovalToApi(a domain.WorkflowApproval) api.WorkflowApproval {
	return api.WorkflowApproval{
		ID:          a.ID,
		ExecutionID: a.ExecutionID,
		ApproverID:  a.ApproverID,
		Status:      string(a.Status),
		StepOrder:   a.StepOrder,
		Comments:    a.Comments,
		RespondedAt: a.RespondedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func MapDomainExecutionDetailToApi(d domain.ExecutionDetail) api.ExecutionDetail {
	out := api.ExecutionDetail{
		Execution: MapDomainExecutionToApi(d.Execution),
		Approvals: make([]api.WorkflowApproval, 0, len(d.Approvals)),
	}
	if d.Workflow != nil {
		wf := MapDomainWorkflowToApi(*d.Workflow)
		out.Workflow = &wf
	}
	for _, a := range d.Approvals {
		out.Approvals = append(out.Approvals, MapDomainApprovalToApi(a))
	}
	return out
}

func MapDomainPendingApprovalToApi(p domain.PendingApproval) api.PendingApproval {
	return api.PendingApproval{
		Approval:  MapDomainApprovalToApi(p.Approval),
		Execution: MapDomainExecutionToApi(p.Execution),
		Workflow:  MapDomainWorkflowToApi(p.Workflow),
	}
}

package adapters

import (
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
)

func MapDomainAuditLogToStore(l *domain.AuditLog) *store.AuditLog {
	row := &store.AuditLog{
		ID:          l.ID,
		UserID:      l.UserID,
		UserEmail:   toNullString(l.UserEmail),
		Action:      string(l.Action),
		EntityType:  l.EntityType,
		EntityID:    toNullString(l.EntityID),
		Description: toNullString(l.Description),
		IPAddress:   toNullString(l.IPAddress),
		UserAgent:   toNullString(l.UserAgent),
		RequestID:   toNullString(l.RequestID),
		CreatedAt:   l.CreatedAt,
	}
	if len(l.Changes) > 0 {
		row.Changes = toNullJSON(l.Changes)
	}
	if l.StatusCode != 0 {
		row.StatusCode.Int64 = int64(l.StatusCode)
		row.StatusCode.Valid = true
	}
	return row
}

func MapStoreAuditLogToDomain(r *store.AuditLog) *domain.AuditLog {
	if r == nil {
		return nil
	}
	l := &domain.AuditLog{
		ID:          r.ID,
		UserID:      r.UserID,
		UserEmail:   r.UserEmail.String,
		Action:      domain.AuditAction(r.Action),
		EntityType:  r.EntityType,
		EntityID:    r.EntityID.String,
		Description: r.Description.String,
		IPAddress:   r.IPAddress.String,
		UserAgent:   r.UserAgent.String,
		RequestID:   r.RequestID.String,
		StatusCode:  int(r.StatusCode.Int64),
		CreatedAt:   r.CreatedAt.UTC(),
	}
	fromNullJSON(r.Changes, &l.Changes)
	return l
}

func MapDomainAuditLogToApi(l domain.AuditLog) api.AuditLog {
	return api.AuditLog{
		ID:          l.ID,
		UserID:      l.UserID,
		UserEmail:   l.UserEmail,
		Action:      string(l.Action),
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Description: l.Description,
		Changes:     l.Changes,
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
		RequestID:   l.RequestID,
		StatusCode:  l.StatusCode,
		CreatedAt:   l.CreatedAt,
	}
}

func MapDomainAuditStatsToApi(s domain.AuditStats) api.AuditStats {
	return api.AuditStats{
		Total:        s.Total,
		ByAction:     s.ByAction,
		ByEntityType: s.ByEntityType,
		From:         s.From,
		To:           s.To,
	}
}

package repository

import (
	"context"
	"strings"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

type AuditLogFilter struct {
	EntityType string
	Search     string
	Limit      int
}

// ListAuditLogs returns the newest entries first, 100 by default.
func (r *Repository) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error) {
	q := gateway.Query{
		Order: []gateway.Order{gateway.Desc("created_at")},
		Limit: normalizeLimit(filter.Limit, 100),
	}
	if entityType := strings.TrimSpace(filter.EntityType); entityType != "" && !strings.EqualFold(entityType, "ALL") {
		q.Filters = append(q.Filters, gateway.Eq("entity_type", strings.ToUpper(entityType)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.Filters = append(q.Filters, gateway.Search(search, "action", "entity_type"))
	}
	return selectAll(ctx, r.gw, gateway.TableAuditLogs, q, decodeAuditLog)
}

func decodeAuditLog(row gateway.Row) domain.AuditLog {
	return domain.AuditLog{
		ID:         row.String("id"),
		UserID:     row.String("user_id"),
		Action:     domain.AuditAction(row.String("action")),
		EntityType: domain.EntityType(row.String("entity_type")),
		EntityID:   row.String("entity_id"),
		Details:    row.Value("details"),
		CreatedAt:  row.Time("created_at"),
	}
}

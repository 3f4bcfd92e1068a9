package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
	"github.com/rs/zerolog/log"
)

// AuditService records and queries admin actions.
type AuditService struct {
	pool *pgxpool.Pool
}

// NewAuditService creates a new audit service
func NewAuditService(pool *pgxpool.Pool) *AuditService {
	return &AuditService{pool: pool}
}

// Record writes one audit entry. Best-effort: failures are logged and
// swallowed so the triggering request is never blocked.
func (as *AuditService) Record(ctx context.Context, entry models.AuditLog) {
	_, err := as.pool.Exec(ctx, `
		INSERT INTO audit_logs (actor, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.Actor, entry.Action, entry.Entity, entry.EntityID, entry.Detail)
	if err != nil {
		log.Warn().Err(err).
			Str("action", entry.Action).
			Str("entity", entry.Entity).
			Msg("failed to write audit log")
	}
}

// AuditFilter narrows an audit log query.
type AuditFilter struct {
	Actor  string
	Action string
	Limit  int
	Offset int
}

// List returns audit entries newest first with the total count for paging.
func (as *AuditService) List(ctx context.Context, filter AuditFilter) ([]*models.AuditLog, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	where := " WHERE 1=1"
	args := []any{}
	if filter.Actor != "" {
		args = append(args, filter.Actor)
		where += fmt.Sprintf(" AND actor = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(" AND action = $%d", len(args))
	}

	var total int
	if err := as.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, actor, action, entity, entity_id, detail, created_at
		FROM audit_logs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := as.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.Actor, &l.Action, &l.Entity, &l.EntityID, &l.Detail, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, total, rows.Err()
}

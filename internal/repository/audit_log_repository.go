package repository

import (
	"context"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// AuditLogRepository stores the generic append-only forensic trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	db DB
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (entity_type, entity_id, action, performed_by_id, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.PerformedByID,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, entity_type, entity_id, action, performed_by_id, old_value, new_value, created_at
        FROM audit_logs WHERE entity_type=$1 AND entity_id=$2 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.PerformedByID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// NotificationRepository stores per-recipient in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
	// MarkRead flips the notification to READ for its owner only.
	MarkRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db DB
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, type, title, message, data, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	if n.Status == "" {
		n.Status = domain.NotificationStatusUnread
	}
	return r.db.QueryRow(ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.Data,
		n.Status,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, type, title, message, data, status, read_at, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Data,
			&n.Status,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `
        UPDATE notifications SET status=$1, read_at=NOW()
        WHERE id=$2 AND user_id=$3 AND status=$4`
	cmd, err := r.db.Exec(ctx, query, domain.NotificationStatusRead, id, userID, domain.NotificationStatusUnread)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND status=$2`
	var count int64
	err := r.db.QueryRow(ctx, query, userID, domain.NotificationStatusUnread).Scan(&count)
	return count, err
}

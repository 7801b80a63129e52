package repository

import (
	"context"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// TicketHistoryRepository stores the append-only transition log.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	db DB
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DB) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, status, changed_by_id, note)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		history.TicketID,
		history.Status,
		history.ChangedByID,
		history.Note,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, status, changed_by_id, note, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.Status,
			&history.ChangedByID,
			&history.Note,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

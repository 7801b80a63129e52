package repository

import (
	"context"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// TicketNoteRepository stores free-text ticket annotations.
type TicketNoteRepository interface {
	Create(ctx context.Context, note *domain.TicketNote) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error)
}

type ticketNoteRepository struct {
	db DB
}

// NewTicketNoteRepository builds repository.
func NewTicketNoteRepository(db DB) TicketNoteRepository {
	return &ticketNoteRepository{db: db}
}

func (r *ticketNoteRepository) Create(ctx context.Context, note *domain.TicketNote) error {
	const query = `
        INSERT INTO ticket_notes (ticket_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		note.TicketID,
		note.AuthorID,
		note.Content,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *ticketNoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, created_at
        FROM ticket_notes WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketNote
	for rows.Next() {
		var note domain.TicketNote
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.AuthorID,
			&note.Content,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CustomerID   *string
	AssignedToID *string
	CreatedByID  *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate locks the ticket row for the duration of the enclosing
	// transaction so concurrent transitions on the same ticket serialize.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, external_key, customer_id, asset_id, assigned_to_id, created_by_id,
               title, description, status, priority, created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, customer_id, asset_id, assigned_to_id, created_by_id, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.CustomerID,
		ticket.AssetID,
		ticket.AssignedToID,
		ticket.CreatedByID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to_id=$1, title=$2, description=$3, status=$4, priority=$5,
            resolved_at=$6, closed_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		ticket.AssignedToID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.CustomerID,
		&ticket.AssetID,
		&ticket.AssignedToID,
		&ticket.CreatedByID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.CustomerID,
			&ticket.AssetID,
			&ticket.AssignedToID,
			&ticket.CreatedByID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

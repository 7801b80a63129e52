package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// PurchaseOrderRepository encapsulates purchase order and line item persistence.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	Update(ctx context.Context, po *domain.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	// GetByIDForUpdate locks the purchase order row for the duration of the
	// enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.PurchaseOrder, error)
	CreateItem(ctx context.Context, item *domain.PurchaseOrderItem) error
	ListItems(ctx context.Context, poID string) ([]domain.PurchaseOrderItem, error)
}

type purchaseOrderRepository struct {
	db DB
}

// NewPurchaseOrderRepository instantiates repository.
func NewPurchaseOrderRepository(db DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

const poColumns = `id, number, ticket_id, status, total_cents, notes, created_by_id,
               approved_by_id, approved_at, cancelled_by_id, cancelled_at, cancellation_reason,
               created_at, updated_at`

func (r *purchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	const query = `
        INSERT INTO purchase_orders (number, ticket_id, status, total_cents, notes, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		po.Number,
		po.TicketID,
		po.Status,
		po.TotalCents,
		po.Notes,
		po.CreatedByID,
	).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
}

func (r *purchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	const query = `
        UPDATE purchase_orders SET status=$1, total_cents=$2, notes=$3,
            approved_by_id=$4, approved_at=$5, cancelled_by_id=$6, cancelled_at=$7,
            cancellation_reason=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		po.Status,
		po.TotalCents,
		po.Notes,
		po.ApprovedByID,
		po.ApprovedAt,
		po.CancelledByID,
		po.CancelledAt,
		po.CancellationReason,
		po.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE id=$1`, poColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *purchaseOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE id=$1 FOR UPDATE`, poColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *purchaseOrderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&po.ID,
		&po.Number,
		&po.TicketID,
		&po.Status,
		&po.TotalCents,
		&po.Notes,
		&po.CreatedByID,
		&po.ApprovedByID,
		&po.ApprovedAt,
		&po.CancelledByID,
		&po.CancelledAt,
		&po.CancellationReason,
		&po.CreatedAt,
		&po.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.PurchaseOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE ticket_id=$1 ORDER BY created_at ASC`, poColumns)
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrder
	for rows.Next() {
		var po domain.PurchaseOrder
		if err := rows.Scan(
			&po.ID,
			&po.Number,
			&po.TicketID,
			&po.Status,
			&po.TotalCents,
			&po.Notes,
			&po.CreatedByID,
			&po.ApprovedByID,
			&po.ApprovedAt,
			&po.CancelledByID,
			&po.CancelledAt,
			&po.CancellationReason,
			&po.CreatedAt,
			&po.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, po)
	}
	return result, rows.Err()
}

func (r *purchaseOrderRepository) CreateItem(ctx context.Context, item *domain.PurchaseOrderItem) error {
	const query = `
        INSERT INTO purchase_order_items (purchase_order_id, description, quantity, unit_price_cents)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		item.PurchaseOrderID,
		item.Description,
		item.Quantity,
		item.UnitPriceCents,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *purchaseOrderRepository) ListItems(ctx context.Context, poID string) ([]domain.PurchaseOrderItem, error) {
	const query = `
        SELECT id, purchase_order_id, description, quantity, unit_price_cents, created_at
        FROM purchase_order_items WHERE purchase_order_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrderItem
	for rows.Next() {
		var item domain.PurchaseOrderItem
		if err := rows.Scan(
			&item.ID,
			&item.PurchaseOrderID,
			&item.Description,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

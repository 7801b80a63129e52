package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/notify"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// POItemInput describes one submitted line item. Totals are always computed
// server-side from these; client-supplied totals are ignored.
type POItemInput struct {
	Description    string
	Quantity       int64
	UnitPriceCents int64
}

// CreatePOInput describes purchase order creation payload.
type CreatePOInput struct {
	Notes string
	Items []POItemInput
}

// CreatePurchaseOrder opens a purchase order against a ticket. Only the
// assigned service person or an admin may create one. If the parent ticket
// is not already waiting on a PO it is moved there in the same transaction.
func (e *Engine) CreatePurchaseOrder(ctx context.Context, actor domain.Actor, ticketID string, input CreatePOInput) (*domain.PurchaseOrder, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var total int64
	for _, item := range input.Items {
		total += item.Quantity * item.UnitPriceCents
	}

	po := &domain.PurchaseOrder{
		Number:      generatePONumber(),
		TicketID:    ticketID,
		Status:      domain.POStatusDraft,
		TotalCents:  total,
		Notes:       strings.TrimSpace(input.Notes),
		CreatedByID: actor.ID,
	}

	var ticket *domain.Ticket
	err := e.store.WithinTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		t, err := tx.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket")
			}
			return err
		}
		if !CanCreatePO(actor, t) {
			return apperrors.NewForbidden()
		}

		if err := tx.Orders.Create(ctx, po); err != nil {
			return err
		}
		for i := range input.Items {
			item := &domain.PurchaseOrderItem{
				PurchaseOrderID: po.ID,
				Description:     strings.TrimSpace(input.Items[i].Description),
				Quantity:        input.Items[i].Quantity,
				UnitPriceCents:  input.Items[i].UnitPriceCents,
			}
			if err := tx.Orders.CreateItem(ctx, item); err != nil {
				return err
			}
			po.Items = append(po.Items, *item)
		}

		if err := tx.Audit.Create(ctx, &domain.AuditLog{
			EntityType:    domain.AuditEntityPO,
			EntityID:      po.ID,
			Action:        domain.AuditActionCreate,
			PerformedByID: actor.ID,
			NewValue:      poSnapshot(po),
		}); err != nil {
			return err
		}

		if t.Status != domain.TicketStatusWaitingForPO {
			note := fmt.Sprintf("Purchase order %s created; awaiting approval", po.Number)
			if err := e.applyTicketTransition(ctx, tx, t, domain.TicketStatusWaitingForPO, actor, note, true); err != nil {
				return err
			}
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	e.enqueuePOJob(po, ticket, actor, domain.NotificationPOCreated,
		"Purchase order created",
		fmt.Sprintf("Purchase order %s was created for ticket %s", po.Number, ticket.ExternalKey))
	return po, nil
}

// AddPurchaseOrderItem appends one line item and bumps the derived total in
// the same transaction. Items are frozen once the PO leaves
// DRAFT/PENDING_APPROVAL.
func (e *Engine) AddPurchaseOrderItem(ctx context.Context, actor domain.Actor, poID string, input POItemInput) (*domain.PurchaseOrder, error) {
	if err := validateItems([]POItemInput{input}); err != nil {
		return nil, err
	}

	var po *domain.PurchaseOrder
	err := e.store.WithinTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		p, err := tx.Orders.GetByIDForUpdate(ctx, poID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("purchase order")
			}
			return err
		}
		t, err := tx.Tickets.GetByID(ctx, p.TicketID)
		if err != nil {
			return err
		}
		if !CanActOnPO(actor, p, t) {
			return apperrors.NewForbidden()
		}
		if !poItemsMutable(p.Status) {
			return apperrors.NewConflict("purchase order can no longer be modified",
				map[string]any{"status": string(p.Status)})
		}

		oldSnapshot := poSnapshot(p)
		item := &domain.PurchaseOrderItem{
			PurchaseOrderID: p.ID,
			Description:     strings.TrimSpace(input.Description),
			Quantity:        input.Quantity,
			UnitPriceCents:  input.UnitPriceCents,
		}
		if err := tx.Orders.CreateItem(ctx, item); err != nil {
			return err
		}
		p.TotalCents += item.LineTotalCents()
		if err := tx.Orders.Update(ctx, p); err != nil {
			return err
		}
		if err := tx.Audit.Create(ctx, &domain.AuditLog{
			EntityType:    domain.AuditEntityPO,
			EntityID:      p.ID,
			Action:        domain.AuditActionItemAdded,
			PerformedByID: actor.ID,
			OldValue:      oldSnapshot,
			NewValue:      poSnapshot(p),
		}); err != nil {
			return err
		}
		items, err := tx.Orders.ListItems(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Items = items
		po = p
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return po, nil
}

// ApprovePurchaseOrder is the admin-only approval edge. It forces the parent
// ticket into the parts-pending state in the same transaction.
func (e *Engine) ApprovePurchaseOrder(ctx context.Context, actor domain.Actor, poID string) (*domain.PurchaseOrder, error) {
	return e.decidePurchaseOrder(ctx, actor, poID, domain.POStatusApproved, "")
}

// RejectPurchaseOrder is the admin-only rejection edge. The parent ticket
// falls back to SPARE_NEEDED.
func (e *Engine) RejectPurchaseOrder(ctx context.Context, actor domain.Actor, poID, reason string) (*domain.PurchaseOrder, error) {
	return e.decidePurchaseOrder(ctx, actor, poID, domain.POStatusRejected, reason)
}

func (e *Engine) decidePurchaseOrder(ctx context.Context, actor domain.Actor, poID string, target domain.POStatus, reason string) (*domain.PurchaseOrder, error) {
	if !CanApprovePO(actor) {
		return nil, apperrors.NewForbidden()
	}
	return e.transitionPO(ctx, actor, poID, target, reason, false)
}

// UpdatePurchaseOrderStatus moves a purchase order along its transition
// table. Approval and rejection route through the admin-only gate; the
// remaining edges are open to the assigned service person, the PO creator
// and admins.
func (e *Engine) UpdatePurchaseOrderStatus(ctx context.Context, actor domain.Actor, poID string, requested domain.POStatus, reason string) (*domain.PurchaseOrder, error) {
	if !IsPOStatus(requested) {
		return nil, apperrors.NewInvalidStatus(string(requested))
	}
	if requested == domain.POStatusApproved || requested == domain.POStatusRejected {
		return e.decidePurchaseOrder(ctx, actor, poID, requested, reason)
	}
	return e.transitionPO(ctx, actor, poID, requested, reason, true)
}

// transitionPO executes one purchase order transition: table validation, the
// PO status write with its decision fields, the coupled ticket side-effect
// and both audit rows, all in one transaction. If the coupled ticket write
// fails the PO change rolls back with it.
func (e *Engine) transitionPO(ctx context.Context, actor domain.Actor, poID string, target domain.POStatus, reason string, checkAccess bool) (*domain.PurchaseOrder, error) {
	var (
		po     *domain.PurchaseOrder
		ticket *domain.Ticket
	)
	err := e.store.WithinTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		p, err := tx.Orders.GetByIDForUpdate(ctx, poID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("purchase order")
			}
			return err
		}
		t, err := tx.Tickets.GetByIDForUpdate(ctx, p.TicketID)
		if err != nil {
			return err
		}
		if checkAccess && !CanActOnPO(actor, p, t) {
			return apperrors.NewForbidden()
		}
		if p.Status == target {
			return apperrors.NewConflict(
				fmt.Sprintf("purchase order is already %s", target), nil)
		}
		if IsTerminalPO(p.Status) {
			return apperrors.NewConflict(
				fmt.Sprintf("purchase order is final in status %s", p.Status),
				map[string]any{"status": string(p.Status)})
		}
		if !CanTransitionPO(p.Status, target) {
			return apperrors.NewInvalidTransition(string(p.Status), string(target))
		}

		oldSnapshot := poSnapshot(p)
		now := time.Now()
		switch target {
		case domain.POStatusApproved:
			id := actor.ID
			p.ApprovedByID = &id
			p.ApprovedAt = &now
		case domain.POStatusCancelled:
			id := actor.ID
			p.CancelledByID = &id
			p.CancelledAt = &now
		}
		// The reason field covers both negative outcomes.
		if target == domain.POStatusCancelled || target == domain.POStatusRejected {
			if trimmed := strings.TrimSpace(reason); trimmed != "" {
				p.CancellationReason = &trimmed
			}
		}
		p.Status = target
		if err := tx.Orders.Update(ctx, p); err != nil {
			return err
		}

		if effect, ok := CoupledTicketEffect(p, target, t.Status); ok {
			if err := e.applyTicketEffect(ctx, tx, t, effect, actor); err != nil {
				return err
			}
		}

		if err := tx.Audit.Create(ctx, &domain.AuditLog{
			EntityType:    domain.AuditEntityPO,
			EntityID:      p.ID,
			Action:        domain.AuditActionStatusChange,
			PerformedByID: actor.ID,
			OldValue:      oldSnapshot,
			NewValue:      poSnapshot(p),
		}); err != nil {
			return err
		}
		po = p
		ticket = t
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	e.enqueuePOJob(po, ticket, actor, domain.NotificationPOStatusChanged,
		"Purchase order "+strings.ToLower(string(po.Status)),
		fmt.Sprintf("Purchase order %s is now %s", po.Number, po.Status))
	return po, nil
}

// applyTicketEffect executes a coupled ticket side-effect: a forced status
// transition with its bookkeeping when the target differs from the current
// status, otherwise just the explanatory note.
func (e *Engine) applyTicketEffect(ctx context.Context, tx *repository.Store, t *domain.Ticket, effect TicketEffect, actor domain.Actor) error {
	if effect.Status != nil && t.Status != *effect.Status {
		return e.applyTicketTransition(ctx, tx, t, *effect.Status, actor, effect.Note, true)
	}
	if effect.Note == "" {
		return nil
	}
	return tx.Notes.Create(ctx, &domain.TicketNote{
		TicketID: t.ID,
		AuthorID: actor.ID,
		Content:  effect.Note,
	})
}

// enqueuePOJob fans a committed PO transition out to the ticket audience
// plus the PO creator, never to the actor.
func (e *Engine) enqueuePOJob(po *domain.PurchaseOrder, t *domain.Ticket, actor domain.Actor, typ domain.NotificationType, title, message string) {
	if e.notifier == nil {
		e.logger.Debug("no notifier configured; skipping purchase order notification",
			zap.String("purchase_order_id", po.ID))
		return
	}
	recipients := ticketRecipients(t, actor.ID)
	if po.CreatedByID != actor.ID && !contains(recipients, po.CreatedByID) {
		recipients = append(recipients, po.CreatedByID)
	}
	if len(recipients) == 0 {
		return
	}
	e.notifier.Enqueue(notify.Job{
		ID:         uuid.NewString(),
		Recipients: recipients,
		Type:       typ,
		Title:      title,
		Message:    message,
		Data: map[string]any{
			"purchase_order_id": po.ID,
			"ticket_id":         t.ID,
			"status":            string(po.Status),
		},
	})
}

// Bounds on line item values. They keep every line total, and any realistic
// sum of lines, far away from int64 overflow.
const (
	maxItemQuantity  = 1_000_000
	maxUnitPriceCent = 1_000_000_000
)

func validateItems(items []POItemInput) error {
	if len(items) == 0 {
		return apperrors.NewValidationError("at least one item required", nil)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return apperrors.NewValidationError("item description required",
				map[string]any{"index": i})
		}
		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return apperrors.NewValidationError("item quantity out of range",
				map[string]any{"index": i, "max": maxItemQuantity})
		}
		if item.UnitPriceCents < 0 || item.UnitPriceCents > maxUnitPriceCent {
			return apperrors.NewValidationError("item unit price out of range",
				map[string]any{"index": i, "max": maxUnitPriceCent})
		}
	}
	return nil
}

func poSnapshot(po *domain.PurchaseOrder) map[string]any {
	snapshot := map[string]any{
		"status":      string(po.Status),
		"total_cents": po.TotalCents,
	}
	if po.ApprovedByID != nil {
		snapshot["approved_by_id"] = *po.ApprovedByID
	}
	return snapshot
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func generatePONumber() string {
	return "PO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

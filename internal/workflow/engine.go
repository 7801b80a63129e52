package workflow

import (
	"context"
	"errors"
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

// Notifier receives post-commit notification jobs. Enqueueing must never
// block or fail the transition that produced the job.
type Notifier interface {
	Enqueue(job notify.Job)
}

// Engine orchestrates ticket and purchase order transitions: policy gate,
// transition table validation, the atomic bookkeeping write-set, and the
// post-commit notification fan-out.
type Engine struct {
	store    *repository.Store
	notifier Notifier
	logger   *zap.Logger
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Store    *repository.Store
	Notifier Notifier
	Logger   *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: deps.Store, notifier: deps.Notifier, logger: logger}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	CustomerID  string
	AssetID     *string
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// CreateTicket opens a new ticket. The initial status depends on whether an
// asset is attached; the creation is recorded in history and the audit log
// like any other transition.
func (e *Engine) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	customerID := input.CustomerID
	if actor.IsCustomerSide() {
		if actor.CustomerID == nil {
			return nil, apperrors.NewForbidden()
		}
		customerID = *actor.CustomerID
	}
	if customerID == "" {
		return nil, apperrors.NewValidationError("customer_id required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	} else if !IsTicketPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority",
			map[string]any{"priority": string(priority)})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		CustomerID:  customerID,
		AssetID:     input.AssetID,
		CreatedByID: actor.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      InitialTicketStatus(input.AssetID != nil),
		Priority:    priority,
	}

	err := e.store.WithinTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		if err := tx.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if err := tx.History.Create(ctx, &domain.TicketHistory{
			TicketID:    ticket.ID,
			Status:      ticket.Status,
			ChangedByID: actor.ID,
			Note:        "Ticket created",
		}); err != nil {
			return err
		}
		return tx.Audit.Create(ctx, &domain.AuditLog{
			EntityType:    domain.AuditEntityTicket,
			EntityID:      ticket.ID,
			Action:        domain.AuditActionCreate,
			PerformedByID: actor.ID,
			NewValue:      ticketSnapshot(ticket),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	e.enqueueTicketJob(ticket, actor, domain.NotificationTicketCreated,
		"Ticket created",
		"Ticket "+ticket.ExternalKey+" was created")
	return ticket, nil
}

// TransitionTicket moves a ticket to the requested status. Validation order:
// enum membership, existence (row-locked), access policy, transition table.
// The status write, optional note, history row and audit row commit as one
// transaction; notification jobs are enqueued only afterwards.
func (e *Engine) TransitionTicket(ctx context.Context, actor domain.Actor, ticketID string, requested domain.TicketStatus, note string) (*domain.Ticket, error) {
	if !IsTicketStatus(requested) {
		return nil, apperrors.NewInvalidStatus(string(requested))
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
		if !CanActOnTicket(actor, t) {
			return apperrors.NewForbidden()
		}
		if !CanTransitionTicket(t.Status, requested) {
			return apperrors.NewInvalidTransition(string(t.Status), string(requested))
		}
		if err := e.applyTicketTransition(ctx, tx, t, requested, actor, note, note != ""); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	e.enqueueTicketJob(ticket, actor, domain.NotificationTicketStatusChanged,
		"Ticket status changed",
		"Ticket "+ticket.ExternalKey+" is now "+string(ticket.Status))
	return ticket, nil
}

// applyTicketTransition executes the write-set for one ticket status change
// inside the caller's transaction: per-edge side effects, the ticket update,
// an optional TicketNote, the TicketHistory row and the AuditLog row.
func (e *Engine) applyTicketTransition(ctx context.Context, tx *repository.Store, t *domain.Ticket, to domain.TicketStatus, actor domain.Actor, note string, writeNote bool) error {
	oldSnapshot := ticketSnapshot(t)
	now := time.Now()

	// First-writer-wins auto-assignment: entering IN_PROGRESS while
	// unassigned binds the acting service person; an existing assignee is
	// never overwritten.
	if to == domain.TicketStatusInProgress && t.AssignedToID == nil && actor.Role == domain.RoleServicePerson {
		id := actor.ID
		t.AssignedToID = &id
	}
	if to == domain.TicketStatusFixedPendingClose && t.ResolvedAt == nil {
		t.ResolvedAt = &now
	}
	if to == domain.TicketStatusClosed && t.ClosedAt == nil {
		t.ClosedAt = &now
	}
	t.Status = to

	if err := tx.Tickets.Update(ctx, t); err != nil {
		return err
	}

	historyNote := note
	if historyNote == "" {
		historyNote = AutoNote(to)
	}
	if writeNote && note != "" {
		if err := tx.Notes.Create(ctx, &domain.TicketNote{
			TicketID: t.ID,
			AuthorID: actor.ID,
			Content:  note,
		}); err != nil {
			return err
		}
	}
	if err := tx.History.Create(ctx, &domain.TicketHistory{
		TicketID:    t.ID,
		Status:      to,
		ChangedByID: actor.ID,
		Note:        historyNote,
	}); err != nil {
		return err
	}
	return tx.Audit.Create(ctx, &domain.AuditLog{
		EntityType:    domain.AuditEntityTicket,
		EntityID:      t.ID,
		Action:        domain.AuditActionStatusChange,
		PerformedByID: actor.ID,
		OldValue:      oldSnapshot,
		NewValue:      ticketSnapshot(t),
	})
}

// enqueueTicketJob fans a committed transition out to the ticket's customer
// contact and assignee, never to the actor.
func (e *Engine) enqueueTicketJob(t *domain.Ticket, actor domain.Actor, typ domain.NotificationType, title, message string) {
	if e.notifier == nil {
		e.logger.Debug("no notifier configured; skipping ticket notification",
			zap.String("ticket_id", t.ID))
		return
	}
	recipients := ticketRecipients(t, actor.ID)
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
			"ticket_id": t.ID,
			"status":    string(t.Status),
		},
	})
}

// ticketRecipients computes the notification audience for a ticket event:
// the raising contact and the assigned service person, excluding the actor
// and duplicates.
func ticketRecipients(t *domain.Ticket, actorID string) []string {
	var recipients []string
	if t.CreatedByID != "" && t.CreatedByID != actorID {
		recipients = append(recipients, t.CreatedByID)
	}
	if t.AssignedToID != nil && *t.AssignedToID != actorID && *t.AssignedToID != t.CreatedByID {
		recipients = append(recipients, *t.AssignedToID)
	}
	return recipients
}

func ticketSnapshot(t *domain.Ticket) map[string]any {
	snapshot := map[string]any{
		"status": string(t.Status),
	}
	if t.AssignedToID != nil {
		snapshot["assigned_to_id"] = *t.AssignedToID
	}
	return snapshot
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/api/dto"
	"github.com/fieldserve/helpdesk-service/internal/auth"
	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	"github.com/fieldserve/helpdesk-service/internal/workflow"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// TicketsHandler exposes ticket lifecycle endpoints.
type TicketsHandler struct {
	engine *workflow.Engine
	store  *repository.Store
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(engine *workflow.Engine, store *repository.Store) *TicketsHandler {
	return &TicketsHandler{engine: engine, store: store}
}

// CreateTicket POST /api/v1/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.engine.CreateTicket(c.UserContext(), actor, workflow.CreateTicketInput{
		CustomerID:  req.CustomerID,
		AssetID:     req.AssetID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /api/v1/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	switch {
	case actor.IsAdmin():
		// unscoped
	case actor.Role == domain.RoleServicePerson:
		id := actor.ID
		filter.AssignedToID = &id
	case actor.CustomerID != nil:
		filter.CustomerID = actor.CustomerID
	default:
		return apperrors.NewForbidden()
	}

	tickets, err := h.store.Tickets.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/v1/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.store.Tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("ticket")
		}
		return err
	}
	if !workflow.CanReadTicket(actor, ticket) {
		return apperrors.NewForbidden()
	}

	history, err := h.store.History.ListByTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	notes, err := h.store.Notes.ListByTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, history, notes)})
}

// UpdateStatus PATCH /api/v1/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.engine.TransitionTicket(c.UserContext(), actor, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		CustomerID:   ticket.CustomerID,
		AssetID:      ticket.AssetID,
		AssignedToID: ticket.AssignedToID,
		Title:        ticket.Title,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, history []domain.TicketHistory, notes []domain.TicketNote) dto.TicketDetailResponse {
	historyResp := make([]dto.TicketHistoryResponse, 0, len(history))
	for _, entry := range history {
		historyResp = append(historyResp, dto.TicketHistoryResponse{
			ID:          entry.ID,
			Status:      entry.Status,
			ChangedByID: entry.ChangedByID,
			Note:        entry.Note,
			CreatedAt:   entry.CreatedAt,
		})
	}
	noteResp := make([]dto.TicketNoteResponse, 0, len(notes))
	for _, note := range notes {
		noteResp = append(noteResp, dto.TicketNoteResponse{
			ID:        note.ID,
			AuthorID:  note.AuthorID,
			Content:   note.Content,
			CreatedAt: note.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		CustomerID:   ticket.CustomerID,
		AssetID:      ticket.AssetID,
		AssignedToID: ticket.AssignedToID,
		CreatedByID:  ticket.CreatedByID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
		ClosedAt:     ticket.ClosedAt,
		History:      historyResp,
		Notes:        noteResp,
	}
}

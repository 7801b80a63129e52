package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/api/dto"
	"github.com/fieldserve/helpdesk-service/internal/auth"
	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	"github.com/fieldserve/helpdesk-service/internal/workflow"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// PurchaseOrdersHandler exposes purchase order workflow endpoints.
type PurchaseOrdersHandler struct {
	engine *workflow.Engine
	store  *repository.Store
}

// NewPurchaseOrdersHandler constructs handler.
func NewPurchaseOrdersHandler(engine *workflow.Engine, store *repository.Store) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{engine: engine, store: store}
}

// Create POST /api/v1/tickets/:id/purchase-orders.
func (h *PurchaseOrdersHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreatePORequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	items := make([]workflow.POItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, workflow.POItemInput{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	po, err := h.engine.CreatePurchaseOrder(c.UserContext(), actor, c.Params("id"), workflow.CreatePOInput{
		Notes: req.Notes,
		Items: items,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": poResponse(po)})
}

// ListByTicket GET /api/v1/tickets/:id/purchase-orders.
func (h *PurchaseOrdersHandler) ListByTicket(c *fiber.Ctx) error {
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

	orders, err := h.store.Orders.ListByTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	items := make([]dto.POResponse, 0, len(orders))
	for i := range orders {
		items = append(items, poResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/purchase-orders/:id.
func (h *PurchaseOrdersHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	po, ticket, err := h.loadPO(c, c.Params("id"))
	if err != nil {
		return err
	}
	if !workflow.CanReadPO(actor, po, ticket) {
		return apperrors.NewForbidden()
	}

	items, err := h.store.Orders.ListItems(c.UserContext(), po.ID)
	if err != nil {
		return err
	}
	po.Items = items
	return c.JSON(fiber.Map{"data": poResponse(po)})
}

// AddItem POST /api/v1/purchase-orders/:id/items.
func (h *PurchaseOrdersHandler) AddItem(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.POItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	po, err := h.engine.AddPurchaseOrderItem(c.UserContext(), actor, c.Params("id"), workflow.POItemInput{
		Description:    req.Description,
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": poResponse(po)})
}

// Approve POST /api/v1/purchase-orders/:id/approve.
func (h *PurchaseOrdersHandler) Approve(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	po, err := h.engine.ApprovePurchaseOrder(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": poResponse(po)})
}

// Reject POST /api/v1/purchase-orders/:id/reject.
func (h *PurchaseOrdersHandler) Reject(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RejectPORequest
	_ = c.BodyParser(&req)

	po, err := h.engine.RejectPurchaseOrder(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": poResponse(po)})
}

// UpdateStatus PATCH /api/v1/purchase-orders/:id/status.
func (h *PurchaseOrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePOStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	po, err := h.engine.UpdatePurchaseOrderStatus(c.UserContext(), actor, c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": poResponse(po)})
}

func (h *PurchaseOrdersHandler) loadPO(c *fiber.Ctx, id string) (*domain.PurchaseOrder, *domain.Ticket, error) {
	po, err := h.store.Orders.GetByID(c.UserContext(), id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("purchase order")
		}
		return nil, nil, err
	}
	ticket, err := h.store.Tickets.GetByID(c.UserContext(), po.TicketID)
	if err != nil {
		return nil, nil, err
	}
	return po, ticket, nil
}

func poResponse(po *domain.PurchaseOrder) dto.POResponse {
	items := make([]dto.POItemResponse, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, dto.POItemResponse{
			ID:             item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			CreatedAt:      item.CreatedAt,
		})
	}
	return dto.POResponse{
		ID:                 po.ID,
		Number:             po.Number,
		TicketID:           po.TicketID,
		Status:             po.Status,
		TotalCents:         po.TotalCents,
		Notes:              po.Notes,
		CreatedByID:        po.CreatedByID,
		ApprovedByID:       po.ApprovedByID,
		ApprovedAt:         po.ApprovedAt,
		CancelledByID:      po.CancelledByID,
		CancelledAt:        po.CancelledAt,
		CancellationReason: po.CancellationReason,
		Items:              items,
		CreatedAt:          po.CreatedAt,
		UpdatedAt:          po.UpdatedAt,
	}
}

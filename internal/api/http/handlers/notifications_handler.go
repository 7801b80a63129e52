package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/api/dto"
	"github.com/fieldserve/helpdesk-service/internal/auth"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// NotificationsHandler exposes the recipient-side notification endpoints.
type NotificationsHandler struct {
	store *repository.Store
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(store *repository.Store) *NotificationsHandler {
	return &NotificationsHandler{store: store}
}

// List GET /api/v1/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	notifications, err := h.store.Notifications.ListByUser(c.UserContext(), user.ID,
		c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	unread, err := h.store.Notifications.CountUnread(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Data:      n.Data,
			Status:    n.Status,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items, "unread_count": unread})
}

// MarkRead POST /api/v1/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.store.Notifications.MarkRead(c.UserContext(), c.Params("id"), user.ID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("notification")
		}
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "READ"}})
}

package dto

import (
	"time"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// NotificationResponse is one in-app notification.
type NotificationResponse struct {
	ID        string                    `json:"id"`
	Type      domain.NotificationType   `json:"type"`
	Title     string                    `json:"title"`
	Message   string                    `json:"message"`
	Data      map[string]any            `json:"data"`
	Status    domain.NotificationStatus `json:"status"`
	ReadAt    *time.Time                `json:"read_at"`
	CreatedAt time.Time                 `json:"created_at"`
}

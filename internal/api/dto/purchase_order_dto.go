package dto

import (
	"time"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// POItemRequest describes one submitted line item.
type POItemRequest struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CreatePORequest payload.
type CreatePORequest struct {
	Notes string          `json:"notes"`
	Items []POItemRequest `json:"items"`
}

// UpdatePOStatusRequest payload for a status transition.
type UpdatePOStatusRequest struct {
	Status domain.POStatus `json:"status"`
	Reason string          `json:"reason"`
}

// RejectPORequest payload.
type RejectPORequest struct {
	Reason string `json:"reason"`
}

// POItemResponse is one line item.
type POItemResponse struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

// POResponse is the full purchase order view.
type POResponse struct {
	ID                 string           `json:"id"`
	Number             string           `json:"number"`
	TicketID           string           `json:"ticket_id"`
	Status             domain.POStatus  `json:"status"`
	TotalCents         int64            `json:"total_cents"`
	Notes              string           `json:"notes"`
	CreatedByID        string           `json:"created_by_id"`
	ApprovedByID       *string          `json:"approved_by_id"`
	ApprovedAt         *time.Time       `json:"approved_at"`
	CancelledByID      *string          `json:"cancelled_by_id"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	CancellationReason *string          `json:"cancellation_reason"`
	Items              []POItemResponse `json:"items"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

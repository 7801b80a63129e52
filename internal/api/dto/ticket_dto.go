package dto

import (
	"time"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  string                `json:"customer_id"`
	AssetID     *string               `json:"asset_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketStatusRequest payload for a transition.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	ExternalKey  string                `json:"external_key"`
	CustomerID   string                `json:"customer_id"`
	AssetID      *string               `json:"asset_id"`
	AssignedToID *string               `json:"assigned_to_id"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string                  `json:"id"`
	ExternalKey  string                  `json:"external_key"`
	CustomerID   string                  `json:"customer_id"`
	AssetID      *string                 `json:"asset_id"`
	AssignedToID *string                 `json:"assigned_to_id"`
	CreatedByID  string                  `json:"created_by_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Status       domain.TicketStatus     `json:"status"`
	Priority     domain.TicketPriority   `json:"priority"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	ResolvedAt   *time.Time              `json:"resolved_at"`
	ClosedAt     *time.Time              `json:"closed_at"`
	History      []TicketHistoryResponse `json:"history"`
	Notes        []TicketNoteResponse    `json:"notes"`
}

// TicketHistoryResponse is one transition log row.
type TicketHistoryResponse struct {
	ID          string              `json:"id"`
	Status      domain.TicketStatus `json:"status"`
	ChangedByID string              `json:"changed_by_id"`
	Note        string              `json:"note"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TicketNoteResponse is one annotation.
type TicketNoteResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

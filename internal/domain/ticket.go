package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusWaitingForResponse TicketStatus = "WAITING_FOR_RESPONSE"
	TicketStatusOpen               TicketStatus = "OPEN"
	TicketStatusInProgress         TicketStatus = "IN_PROGRESS"
	TicketStatusSpareNeeded        TicketStatus = "SPARE_NEEDED"
	TicketStatusWaitingForPO       TicketStatus = "WAITING_FOR_PO"
	TicketStatusFixedPendingClose  TicketStatus = "FIXED_PENDING_CLOSURE"
	TicketStatusClosed             TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket is the aggregate for field-service requests. Status and the
// bookkeeping timestamps are mutated only through workflow transitions.
type Ticket struct {
	ID           string
	ExternalKey  string
	CustomerID   string
	AssetID      *string
	AssignedToID *string
	CreatedByID  string
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

package domain

import "time"

// POStatus enumerates purchase order lifecycle states.
type POStatus string

const (
	POStatusDraft           POStatus = "DRAFT"
	POStatusPendingApproval POStatus = "PENDING_APPROVAL"
	POStatusApproved        POStatus = "APPROVED"
	POStatusRejected        POStatus = "REJECTED"
	POStatusOrdered         POStatus = "ORDERED"
	POStatusReceived        POStatus = "RECEIVED"
	POStatusCancelled       POStatus = "CANCELLED"
)

// PurchaseOrder is a spend request for spare parts tied to one ticket.
// TotalCents is derived from the line items and never hand-edited; amounts
// are integer cents to keep the invariant exact.
type PurchaseOrder struct {
	ID                 string
	Number             string
	TicketID           string
	Status             POStatus
	TotalCents         int64
	Notes              string
	CreatedByID        string
	ApprovedByID       *string
	ApprovedAt         *time.Time
	CancelledByID      *string
	CancelledAt        *time.Time
	CancellationReason *string
	Items              []PurchaseOrderItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	ID              string
	PurchaseOrderID string
	Description     string
	Quantity        int64
	UnitPriceCents  int64
	CreatedAt       time.Time
}

// LineTotalCents returns quantity times unit price.
func (i PurchaseOrderItem) LineTotalCents() int64 {
	return i.Quantity * i.UnitPriceCents
}

package domain

import "time"

// AuditEntityType identifies the entity an audit entry refers to.
type AuditEntityType string

const (
	AuditEntityTicket AuditEntityType = "TICKET"
	AuditEntityPO     AuditEntityType = "PO_REQUEST"
)

// Audit actions recorded by the workflow engine.
const (
	AuditActionCreate       = "CREATE"
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionItemAdded    = "ITEM_ADDED"
)

// AuditLog is the system-wide forensic trail. One row is appended for every
// workflow transition, in the same transaction as the state change.
type AuditLog struct {
	ID            string
	EntityType    AuditEntityType
	EntityID      string
	Action        string
	PerformedByID string
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}

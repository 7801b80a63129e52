package domain

import "time"

// NotificationStatus tracks whether the recipient has seen a notification.
type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "UNREAD"
	NotificationStatusRead   NotificationStatus = "READ"
)

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationTicketCreated       NotificationType = "TICKET_CREATED"
	NotificationTicketStatusChanged NotificationType = "TICKET_STATUS_CHANGED"
	NotificationPOCreated           NotificationType = "PO_CREATED"
	NotificationPOStatusChanged     NotificationType = "PO_STATUS_CHANGED"
)

// Notification is one in-app message per (recipient, event). After creation
// only the recipient mutates it, and only to toggle read state.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any
	Status    NotificationStatus
	ReadAt    *time.Time
	CreatedAt time.Time
}

package domain

import "time"

// TicketHistory is an immutable row recorded for every ticket transition.
type TicketHistory struct {
	ID          string
	TicketID    string
	Status      TicketStatus
	ChangedByID string
	Note        string
	CreatedAt   time.Time
}

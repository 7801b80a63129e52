package domain

import "time"

// TicketNote is a free-form annotation on a ticket. Notes are append-only;
// transition notes are written alongside the history row in the same
// transaction.
type TicketNote struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

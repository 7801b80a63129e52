package workflow

import (
	"fmt"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// ticketTransitions is the legal edge set for ticket statuses. A requested
// target must be reachable from the current status; the table never infers a
// "next" state on its own.
var ticketTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusWaitingForResponse: {
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusOpen: {
		domain.TicketStatusInProgress,
		domain.TicketStatusWaitingForResponse,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusSpareNeeded,
		domain.TicketStatusWaitingForPO,
		domain.TicketStatusFixedPendingClose,
		domain.TicketStatusWaitingForResponse,
	},
	domain.TicketStatusSpareNeeded: {
		domain.TicketStatusWaitingForPO,
		domain.TicketStatusInProgress,
	},
	domain.TicketStatusWaitingForPO: {
		domain.TicketStatusSpareNeeded,
		domain.TicketStatusInProgress,
	},
	domain.TicketStatusFixedPendingClose: {
		domain.TicketStatusClosed,
		domain.TicketStatusInProgress,
	},
	domain.TicketStatusClosed: {},
}

// IsTicketStatus reports whether the value is a recognized ticket status.
func IsTicketStatus(s domain.TicketStatus) bool {
	_, ok := ticketTransitions[s]
	return ok
}

var ticketPriorities = map[domain.TicketPriority]struct{}{
	domain.TicketPriorityLow:      {},
	domain.TicketPriorityMedium:   {},
	domain.TicketPriorityHigh:     {},
	domain.TicketPriorityCritical: {},
}

// IsTicketPriority reports whether the value is a recognized priority.
func IsTicketPriority(p domain.TicketPriority) bool {
	_, ok := ticketPriorities[p]
	return ok
}

// CanTransitionTicket reports whether the edge (from, to) is legal.
func CanTransitionTicket(from, to domain.TicketStatus) bool {
	for _, candidate := range ticketTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// InitialTicketStatus applies the creation rule: tickets with an attached
// asset start OPEN, tickets without one start WAITING_FOR_RESPONSE since
// there is nothing to diagnose against yet.
func InitialTicketStatus(hasAsset bool) domain.TicketStatus {
	if hasAsset {
		return domain.TicketStatusOpen
	}
	return domain.TicketStatusWaitingForResponse
}

// AutoNote is the history note used when the caller supplies none.
func AutoNote(status domain.TicketStatus) string {
	return fmt.Sprintf("Status changed to %s", status)
}

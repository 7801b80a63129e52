package workflow

import (
	"fmt"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// poTransitions is the legal edge set for purchase order statuses.
// RECEIVED, CANCELLED and REJECTED are terminal.
var poTransitions = map[domain.POStatus][]domain.POStatus{
	domain.POStatusDraft: {
		domain.POStatusPendingApproval,
		domain.POStatusCancelled,
	},
	domain.POStatusPendingApproval: {
		domain.POStatusApproved,
		domain.POStatusRejected,
		domain.POStatusCancelled,
	},
	domain.POStatusApproved: {
		domain.POStatusOrdered,
		domain.POStatusCancelled,
	},
	domain.POStatusOrdered: {
		domain.POStatusReceived,
		domain.POStatusCancelled,
	},
	domain.POStatusReceived:  {},
	domain.POStatusCancelled: {},
	domain.POStatusRejected:  {},
}

// IsPOStatus reports whether the value is a recognized purchase order status.
func IsPOStatus(s domain.POStatus) bool {
	_, ok := poTransitions[s]
	return ok
}

// CanTransitionPO reports whether the edge (from, to) is legal.
func CanTransitionPO(from, to domain.POStatus) bool {
	for _, candidate := range poTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminalPO reports whether the status admits no further transitions.
func IsTerminalPO(s domain.POStatus) bool {
	return len(poTransitions[s]) == 0 && IsPOStatus(s)
}

// poItemsMutable reports whether line items may still be appended.
func poItemsMutable(s domain.POStatus) bool {
	return s == domain.POStatusDraft || s == domain.POStatusPendingApproval
}

// TicketEffect describes the ticket side-effect a purchase order transition
// mandates: an optional forced status and a note left on the ticket. The
// effect executes in the same transaction as the PO status write.
type TicketEffect struct {
	// Status is nil when the effect leaves the ticket status untouched.
	Status *domain.TicketStatus
	Note   string
}

// CoupledTicketEffect resolves the ticket side-effect for a PO entering
// newStatus while its parent ticket is in ticketStatus. The bool result
// reports whether there is any effect at all.
func CoupledTicketEffect(po *domain.PurchaseOrder, newStatus domain.POStatus, ticketStatus domain.TicketStatus) (TicketEffect, bool) {
	switch newStatus {
	case domain.POStatusApproved:
		target := domain.TicketStatusWaitingForPO
		return TicketEffect{
			Status: &target,
			Note:   fmt.Sprintf("Purchase order %s approved; parts pending", po.Number),
		}, true
	case domain.POStatusRejected:
		target := domain.TicketStatusSpareNeeded
		return TicketEffect{
			Status: &target,
			Note:   fmt.Sprintf("Purchase order %s rejected", po.Number),
		}, true
	case domain.POStatusOrdered:
		if ticketStatus == domain.TicketStatusSpareNeeded {
			target := domain.TicketStatusInProgress
			return TicketEffect{
				Status: &target,
				Note:   fmt.Sprintf("Parts for purchase order %s ordered", po.Number),
			}, true
		}
		return TicketEffect{}, false
	case domain.POStatusReceived:
		return TicketEffect{
			Note: fmt.Sprintf("Parts for purchase order %s received", po.Number),
		}, true
	default:
		return TicketEffect{}, false
	}
}

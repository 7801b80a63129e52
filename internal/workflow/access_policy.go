package workflow

import "github.com/fieldserve/helpdesk-service/internal/domain"

// Access policy predicates. Pure functions over (actor, entity ownership);
// no I/O. Denials surface to callers as a bare "access denied".

// CanActOnTicket decides whether the actor may transition or annotate the
// ticket: admins always, the customer account owner for their own customer's
// tickets, and service personnel. An unassigned ticket is actionable by any
// service person; once assigned, only by the assignee.
func CanActOnTicket(actor domain.Actor, ticket *domain.Ticket) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role == domain.RoleCustomerOwner {
		return actor.CustomerID != nil && *actor.CustomerID == ticket.CustomerID
	}
	if actor.Role == domain.RoleServicePerson {
		return ticket.AssignedToID == nil || *ticket.AssignedToID == actor.ID
	}
	return false
}

// CanReadTicket additionally lets the raising contact see their own ticket.
func CanReadTicket(actor domain.Actor, ticket *domain.Ticket) bool {
	if CanActOnTicket(actor, ticket) {
		return true
	}
	if actor.IsCustomerSide() {
		return actor.CustomerID != nil && *actor.CustomerID == ticket.CustomerID
	}
	return false
}

// CanCreatePO gates purchase order creation: only the service person
// currently assigned to the parent ticket, or an admin.
func CanCreatePO(actor domain.Actor, ticket *domain.Ticket) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == domain.RoleServicePerson &&
		ticket.AssignedToID != nil && *ticket.AssignedToID == actor.ID
}

// CanActOnPO decides generic purchase order access for reads, item appends
// and non-approval status updates: admins, the assigned service person of
// the parent ticket, or the PO's creator.
func CanActOnPO(actor domain.Actor, po *domain.PurchaseOrder, ticket *domain.Ticket) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role == domain.RoleServicePerson {
		if ticket.AssignedToID != nil && *ticket.AssignedToID == actor.ID {
			return true
		}
		return po.CreatedByID == actor.ID
	}
	return false
}

// CanReadPO additionally allows customer-account owners whose customer owns
// the parent ticket.
func CanReadPO(actor domain.Actor, po *domain.PurchaseOrder, ticket *domain.Ticket) bool {
	if CanActOnPO(actor, po, ticket) {
		return true
	}
	if actor.Role == domain.RoleCustomerOwner {
		return actor.CustomerID != nil && *actor.CustomerID == ticket.CustomerID
	}
	return false
}

// CanApprovePO is admin-only, independent of the generic PO access check.
func CanApprovePO(actor domain.Actor) bool {
	return actor.IsAdmin()
}

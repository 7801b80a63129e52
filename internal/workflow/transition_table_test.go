package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

func TestCanTransitionTicket(t *testing.T) {
	cases := []struct {
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{domain.TicketStatusWaitingForResponse, domain.TicketStatusOpen, true},
		{domain.TicketStatusWaitingForResponse, domain.TicketStatusInProgress, true},
		{domain.TicketStatusWaitingForResponse, domain.TicketStatusClosed, true},
		{domain.TicketStatusWaitingForResponse, domain.TicketStatusSpareNeeded, false},
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusWaitingForResponse, true},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, true},
		{domain.TicketStatusOpen, domain.TicketStatusFixedPendingClose, false},
		{domain.TicketStatusInProgress, domain.TicketStatusSpareNeeded, true},
		{domain.TicketStatusInProgress, domain.TicketStatusWaitingForPO, true},
		{domain.TicketStatusInProgress, domain.TicketStatusFixedPendingClose, true},
		{domain.TicketStatusInProgress, domain.TicketStatusWaitingForResponse, true},
		{domain.TicketStatusInProgress, domain.TicketStatusClosed, false},
		{domain.TicketStatusSpareNeeded, domain.TicketStatusWaitingForPO, true},
		{domain.TicketStatusSpareNeeded, domain.TicketStatusInProgress, true},
		{domain.TicketStatusSpareNeeded, domain.TicketStatusClosed, false},
		{domain.TicketStatusWaitingForPO, domain.TicketStatusSpareNeeded, true},
		{domain.TicketStatusWaitingForPO, domain.TicketStatusInProgress, true},
		{domain.TicketStatusFixedPendingClose, domain.TicketStatusClosed, true},
		{domain.TicketStatusFixedPendingClose, domain.TicketStatusInProgress, true},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress, false},
	}

	for _, tc := range cases {
		got := CanTransitionTicket(tc.from, tc.to)
		assert.Equalf(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestTicketStatusRecognition(t *testing.T) {
	assert.True(t, IsTicketStatus(domain.TicketStatusOpen))
	assert.True(t, IsTicketStatus(domain.TicketStatusWaitingForPO))
	assert.False(t, IsTicketStatus(domain.TicketStatus("RESOLVED")))
	assert.False(t, IsTicketStatus(domain.TicketStatus("")))
}

func TestInitialTicketStatus(t *testing.T) {
	assert.Equal(t, domain.TicketStatusOpen, InitialTicketStatus(true))
	assert.Equal(t, domain.TicketStatusWaitingForResponse, InitialTicketStatus(false))
}

func TestRepairPathScenario(t *testing.T) {
	// Full repair path with a spare part detour.
	path := []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusSpareNeeded,
		domain.TicketStatusWaitingForPO,
		domain.TicketStatusInProgress,
		domain.TicketStatusFixedPendingClose,
		domain.TicketStatusClosed,
	}
	current := domain.TicketStatusOpen
	for _, next := range path {
		assert.Truef(t, CanTransitionTicket(current, next), "%s -> %s", current, next)
		current = next
	}
	assert.Empty(t, ticketTransitions[current])
}

func TestCanTransitionPO(t *testing.T) {
	cases := []struct {
		from    domain.POStatus
		to      domain.POStatus
		allowed bool
	}{
		{domain.POStatusDraft, domain.POStatusPendingApproval, true},
		{domain.POStatusDraft, domain.POStatusCancelled, true},
		{domain.POStatusDraft, domain.POStatusApproved, false},
		{domain.POStatusPendingApproval, domain.POStatusApproved, true},
		{domain.POStatusPendingApproval, domain.POStatusRejected, true},
		{domain.POStatusPendingApproval, domain.POStatusCancelled, true},
		{domain.POStatusPendingApproval, domain.POStatusOrdered, false},
		{domain.POStatusApproved, domain.POStatusOrdered, true},
		{domain.POStatusApproved, domain.POStatusCancelled, true},
		{domain.POStatusApproved, domain.POStatusRejected, false},
		{domain.POStatusOrdered, domain.POStatusReceived, true},
		{domain.POStatusOrdered, domain.POStatusCancelled, true},
		{domain.POStatusReceived, domain.POStatusCancelled, false},
		{domain.POStatusRejected, domain.POStatusPendingApproval, false},
		{domain.POStatusCancelled, domain.POStatusDraft, false},
	}

	for _, tc := range cases {
		got := CanTransitionPO(tc.from, tc.to)
		assert.Equalf(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalPOStatuses(t *testing.T) {
	assert.True(t, IsTerminalPO(domain.POStatusReceived))
	assert.True(t, IsTerminalPO(domain.POStatusCancelled))
	assert.True(t, IsTerminalPO(domain.POStatusRejected))
	assert.False(t, IsTerminalPO(domain.POStatusDraft))
	assert.False(t, IsTerminalPO(domain.POStatusApproved))
	assert.False(t, IsTerminalPO(domain.POStatus("BOGUS")))
}

func TestCoupledTicketEffect(t *testing.T) {
	po := &domain.PurchaseOrder{Number: "PO-TEST1234"}

	effect, ok := CoupledTicketEffect(po, domain.POStatusApproved, domain.TicketStatusSpareNeeded)
	assert.True(t, ok)
	if assert.NotNil(t, effect.Status) {
		assert.Equal(t, domain.TicketStatusWaitingForPO, *effect.Status)
	}

	effect, ok = CoupledTicketEffect(po, domain.POStatusRejected, domain.TicketStatusWaitingForPO)
	assert.True(t, ok)
	if assert.NotNil(t, effect.Status) {
		assert.Equal(t, domain.TicketStatusSpareNeeded, *effect.Status)
	}

	// ORDERED only pulls the ticket back when it sits in SPARE_NEEDED.
	effect, ok = CoupledTicketEffect(po, domain.POStatusOrdered, domain.TicketStatusSpareNeeded)
	assert.True(t, ok)
	if assert.NotNil(t, effect.Status) {
		assert.Equal(t, domain.TicketStatusInProgress, *effect.Status)
	}
	_, ok = CoupledTicketEffect(po, domain.POStatusOrdered, domain.TicketStatusWaitingForPO)
	assert.False(t, ok)

	// RECEIVED leaves the status alone but records a note.
	effect, ok = CoupledTicketEffect(po, domain.POStatusReceived, domain.TicketStatusInProgress)
	assert.True(t, ok)
	assert.Nil(t, effect.Status)
	assert.NotEmpty(t, effect.Note)

	_, ok = CoupledTicketEffect(po, domain.POStatusCancelled, domain.TicketStatusInProgress)
	assert.False(t, ok)
}

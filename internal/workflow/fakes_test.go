package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/notify"
	"github.com/fieldserve/helpdesk-service/internal/repository"
)

// memState is the shared backing store for the in-memory repositories used in
// engine tests. The transactor serializes access with the mutex so concurrent
// transitions observe each other's committed writes, mirroring the row lock
// the real repositories take.
type memState struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
	orders  map[string]domain.PurchaseOrder
	history []domain.TicketHistory
	notes   []domain.TicketNote
	audits  []domain.AuditLog
	items   []domain.PurchaseOrderItem
}

func newMemState() *memState {
	return &memState{
		tickets: make(map[string]domain.Ticket),
		orders:  make(map[string]domain.PurchaseOrder),
	}
}

func (s *memState) nextID() string {
	s.seq++
	return fmt.Sprintf("id-%d", s.seq)
}

func (s *memState) snapshot() *memState {
	cp := &memState{
		seq:     s.seq,
		tickets: make(map[string]domain.Ticket, len(s.tickets)),
		orders:  make(map[string]domain.PurchaseOrder, len(s.orders)),
	}
	for k, v := range s.tickets {
		cp.tickets[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	cp.history = append([]domain.TicketHistory(nil), s.history...)
	cp.notes = append([]domain.TicketNote(nil), s.notes...)
	cp.audits = append([]domain.AuditLog(nil), s.audits...)
	cp.items = append([]domain.PurchaseOrderItem(nil), s.items...)
	return cp
}

func (s *memState) restore(snap *memState) {
	s.seq = snap.seq
	s.tickets = snap.tickets
	s.orders = snap.orders
	s.history = snap.history
	s.notes = snap.notes
	s.audits = snap.audits
	s.items = snap.items
}

func newMemStore(state *memState) *repository.Store {
	return &repository.Store{
		Tickets:       &memTicketRepo{state},
		History:       &memHistoryRepo{state},
		Notes:         &memNoteRepo{state},
		Audit:         &memAuditRepo{state},
		Orders:        &memOrderRepo{state},
		Notifications: nil,
		Users:         nil,
		Tx:            &memTransactor{state},
	}
}

type memTransactor struct {
	state *memState
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *repository.Store) error) error {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	tx := newMemStore(t.state)
	tx.Tx = &memJoinedTransactor{store: tx}
	return fn(ctx, tx)
}

type memJoinedTransactor struct {
	store *repository.Store
}

func (t *memJoinedTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *repository.Store) error) error {
	return fn(ctx, t.store)
}

// rollbackTransactor snapshots the state before running the function and
// restores it when the function fails, matching the commit-or-rollback
// contract of the pgx transactor. mutate lets a test swap failing
// repositories into the transaction-bound store.
type rollbackTransactor struct {
	state  *memState
	mutate func(tx *repository.Store)
}

func (t *rollbackTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *repository.Store) error) error {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	snap := t.state.snapshot()
	tx := newMemStore(t.state)
	tx.Tx = &memJoinedTransactor{store: tx}
	if t.mutate != nil {
		t.mutate(tx)
	}
	if err := fn(ctx, tx); err != nil {
		t.state.restore(snap)
		return err
	}
	return nil
}

// failingTicketWrites lets reads through but fails every ticket update.
type failingTicketWrites struct {
	repository.TicketRepository
}

func (r *failingTicketWrites) Update(ctx context.Context, ticket *domain.Ticket) error {
	return fmt.Errorf("ticket update failed")
}

type memTicketRepo struct {
	state *memState
}

func (r *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = r.state.nextID()
	}
	r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.state.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.state.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := t
	return &copy, nil
}

func (r *memTicketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *memTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, t := range r.state.tickets {
		if filter.CustomerID != nil && t.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

type memHistoryRepo struct {
	state *memState
}

func (r *memHistoryRepo) Create(ctx context.Context, h *domain.TicketHistory) error {
	if h.ID == "" {
		h.ID = r.state.nextID()
	}
	r.state.history = append(r.state.history, *h)
	return nil
}

func (r *memHistoryRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, h := range r.state.history {
		if h.TicketID == ticketID {
			result = append(result, h)
		}
	}
	return result, nil
}

type memNoteRepo struct {
	state *memState
}

func (r *memNoteRepo) Create(ctx context.Context, n *domain.TicketNote) error {
	if n.ID == "" {
		n.ID = r.state.nextID()
	}
	r.state.notes = append(r.state.notes, *n)
	return nil
}

func (r *memNoteRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error) {
	var result []domain.TicketNote
	for _, n := range r.state.notes {
		if n.TicketID == ticketID {
			result = append(result, n)
		}
	}
	return result, nil
}

type memAuditRepo struct {
	state *memState
}

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = r.state.nextID()
	}
	r.state.audits = append(r.state.audits, *entry)
	return nil
}

func (r *memAuditRepo) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditLog, error) {
	var result []domain.AuditLog
	for _, a := range r.state.audits {
		if a.EntityType == entityType && a.EntityID == entityID {
			result = append(result, a)
		}
	}
	return result, nil
}

type memOrderRepo struct {
	state *memState
}

func (r *memOrderRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	if po.ID == "" {
		po.ID = r.state.nextID()
	}
	stored := *po
	stored.Items = nil
	r.state.orders[po.ID] = stored
	return nil
}

func (r *memOrderRepo) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	if _, ok := r.state.orders[po.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *po
	stored.Items = nil
	r.state.orders[po.ID] = stored
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	po, ok := r.state.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := po
	return &copy, nil
}

func (r *memOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.PurchaseOrder, error) {
	var result []domain.PurchaseOrder
	for _, po := range r.state.orders {
		if po.TicketID == ticketID {
			result = append(result, po)
		}
	}
	return result, nil
}

func (r *memOrderRepo) CreateItem(ctx context.Context, item *domain.PurchaseOrderItem) error {
	if item.ID == "" {
		item.ID = r.state.nextID()
	}
	r.state.items = append(r.state.items, *item)
	return nil
}

func (r *memOrderRepo) ListItems(ctx context.Context, poID string) ([]domain.PurchaseOrderItem, error) {
	var result []domain.PurchaseOrderItem
	for _, item := range r.state.items {
		if item.PurchaseOrderID == poID {
			result = append(result, item)
		}
	}
	return result, nil
}

// recordingNotifier captures enqueued jobs for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	jobs []notify.Job
}

func (n *recordingNotifier) Enqueue(job notify.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
}

func (n *recordingNotifier) all() []notify.Job {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Job(nil), n.jobs...)
}

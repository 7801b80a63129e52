package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories the workflow engine writes through, plus the
// Transactor that scopes them to a single database transaction.
type Store struct {
	Tickets       TicketRepository
	History       TicketHistoryRepository
	Notes         TicketNoteRepository
	Audit         AuditLogRepository
	Orders        PurchaseOrderRepository
	Notifications NotificationRepository
	Users         UserRepository

	Tx Transactor
}

// Transactor runs a function against a transaction-bound Store. All writes
// performed through the passed Store commit or roll back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error
}

// WithinTransaction delegates to the configured Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return s.Tx.WithinTransaction(ctx, fn)
}

// NewPostgresStore builds a Store whose repositories execute against the pool
// and whose Transactor opens pgx transactions.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	s := storeForDB(pool)
	s.Tx = &pgxTransactor{pool: pool}
	return s
}

func storeForDB(db DB) *Store {
	return &Store{
		Tickets:       NewTicketRepository(db),
		History:       NewTicketHistoryRepository(db),
		Notes:         NewTicketNoteRepository(db),
		Audit:         NewAuditLogRepository(db),
		Orders:        NewPurchaseOrderRepository(db),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
	}
}

type pgxTransactor struct {
	pool *pgxpool.Pool
}

// WithinTransaction opens a transaction, binds a Store to it and commits when
// fn succeeds. Row-level serialization comes from the repositories issuing
// SELECT ... FOR UPDATE on the entity under transition.
func (t *pgxTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) (err error) {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	txStore := storeForDB(tx)
	txStore.Tx = &joinedTransactor{store: txStore}

	if err = fn(ctx, txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// joinedTransactor makes nested WithinTransaction calls join the transaction
// already in flight.
type joinedTransactor struct {
	store *Store
}

func (t *joinedTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return fn(ctx, t.store)
}

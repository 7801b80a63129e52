package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

type memNotificationRepo struct {
	mu      sync.Mutex
	created []domain.Notification
	fail    bool
}

func (r *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *memNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	return nil, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (r *memNotificationRepo) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.created...)
}

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

type memRegistry struct {
	mu        sync.Mutex
	published []string
	fail      bool
}

func (r *memRegistry) Publish(ctx context.Context, userID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("publish failed")
	}
	r.published = append(r.published, userID)
	return nil
}

type memEmail struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (e *memEmail) Send(ctx context.Context, to, subject, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("smtp down")
	}
	e.sent = append(e.sent, to)
	return nil
}

func testUsers() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "u1@example.com"},
		"u2": {ID: "u2", Email: "u2@example.com"},
	}}
}

func TestDispatcherFansOutPerRecipient(t *testing.T) {
	repo := &memNotificationRepo{}
	registry := &memRegistry{}
	email := &memEmail{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Registry:         registry,
		Email:            email,
		Logger:           zap.NewNop(),
	})
	d.Start(2)

	d.Enqueue(Job{
		ID:         "job-1",
		Recipients: []string{"u1", "u2"},
		Type:       domain.NotificationTicketStatusChanged,
		Title:      "Ticket status changed",
		Message:    "Ticket TCK-1 is now CLOSED",
	})
	d.Close()

	created := repo.all()
	require.Len(t, created, 2)
	for _, n := range created {
		assert.Equal(t, domain.NotificationStatusUnread, n.Status)
		assert.Equal(t, domain.NotificationTicketStatusChanged, n.Type)
	}
	assert.ElementsMatch(t, []string{"u1", "u2"}, registry.published)
	assert.ElementsMatch(t, []string{"u1@example.com", "u2@example.com"}, email.sent)
}

func TestDispatcherEmailFailureDoesNotStopDelivery(t *testing.T) {
	repo := &memNotificationRepo{}
	registry := &memRegistry{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Registry:         registry,
		Email:            &memEmail{fail: true},
		Logger:           zap.NewNop(),
	})
	d.Start(1)

	d.Enqueue(Job{ID: "job-1", Recipients: []string{"u1", "u2"}, Title: "t", Message: "m"})
	d.Close()

	assert.Len(t, repo.all(), 2)
	assert.Len(t, registry.published, 2)
}

func TestDispatcherPublishFailureIsBestEffort(t *testing.T) {
	repo := &memNotificationRepo{}
	email := &memEmail{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Registry:         &memRegistry{fail: true},
		Email:            email,
		Logger:           zap.NewNop(),
	})
	d.Start(1)

	d.Enqueue(Job{ID: "job-1", Recipients: []string{"u1"}, Title: "t", Message: "m"})
	d.Close()

	assert.Len(t, repo.all(), 1)
	assert.Len(t, email.sent, 1)
}

func TestDispatcherCreateFailureSkipsRecipient(t *testing.T) {
	repo := &memNotificationRepo{fail: true}
	registry := &memRegistry{}
	email := &memEmail{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Registry:         registry,
		Email:            email,
		Logger:           zap.NewNop(),
	})
	d.Start(1)

	d.Enqueue(Job{ID: "job-1", Recipients: []string{"u1"}, Title: "t", Message: "m"})
	d.Close()

	assert.Empty(t, registry.published)
	assert.Empty(t, email.sent)
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	repo := &memNotificationRepo{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Logger:           zap.NewNop(),
	})
	d.Start(1)
	d.Close()

	d.Enqueue(Job{ID: "job-late", Recipients: []string{"u1"}, Title: "t", Message: "m"})
	assert.Empty(t, repo.all())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	repo := &memNotificationRepo{}

	// Never started, so the buffer fills and the overflow job is dropped
	// instead of blocking the caller.
	d := NewDispatcher(1, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Logger:           zap.NewNop(),
	})

	d.Enqueue(Job{ID: "job-1", Recipients: []string{"u1"}, Title: "t", Message: "m"})
	d.Enqueue(Job{ID: "job-2", Recipients: []string{"u2"}, Title: "t", Message: "m"})

	d.Start(1)
	d.Close()

	created := repo.all()
	require.Len(t, created, 1)
	assert.Equal(t, "u1", created[0].UserID)
}

func TestDispatcherUnknownRecipientSkipsEmailOnly(t *testing.T) {
	repo := &memNotificationRepo{}
	email := &memEmail{}

	d := NewDispatcher(8, DispatcherDependencies{
		NotificationRepo: repo,
		UserRepo:         testUsers(),
		Email:            email,
		Logger:           zap.NewNop(),
	})
	d.Start(1)

	d.Enqueue(Job{ID: "job-1", Recipients: []string{"ghost"}, Title: "t", Message: "m"})
	d.Close()

	assert.Len(t, repo.all(), 1)
	assert.Empty(t, email.sent)
}

package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/repository"
)

// Dispatcher consumes notification jobs asynchronously on a fixed worker
// pool. For each recipient it creates an in-app notification row, publishes
// to the live channel and attempts one email. Every failure is logged and
// recovered locally; nothing propagates back to the request that enqueued
// the job.
type Dispatcher struct {
	jobs          chan Job
	notifications repository.NotificationRepository
	users         repository.UserRepository
	registry      ConnectionRegistry
	email         EmailSender
	logger        *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// DispatcherDependencies bundles collaborators for the dispatcher.
type DispatcherDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Registry         ConnectionRegistry
	Email            EmailSender
	Logger           *zap.Logger
}

// NewDispatcher constructs the dispatcher with the given queue capacity.
func NewDispatcher(queueSize int, deps DispatcherDependencies) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		jobs:          make(chan Job, queueSize),
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		registry:      deps.Registry,
		email:         deps.Email,
		logger:        deps.Logger,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue schedules a job without blocking the caller. When the queue is
// saturated or the dispatcher is shutting down the job is dropped with a
// warning; in-app delivery is at-most-once from the caller's point of view.
func (d *Dispatcher) Enqueue(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("notification dispatcher closed; dropping job", zap.String("job_id", job.ID))
		return
	}
	select {
	case d.jobs <- job:
	default:
		d.logger.Warn("notification queue full; dropping job",
			zap.String("job_id", job.ID),
			zap.Int("recipients", len(job.Recipients)))
	}
}

// Close stops accepting jobs and waits for in-flight work to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.process(context.Background(), job)
	}
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	for _, recipient := range job.Recipients {
		record := &domain.Notification{
			UserID:  recipient,
			Type:    job.Type,
			Title:   job.Title,
			Message: job.Message,
			Data:    job.Data,
			Status:  domain.NotificationStatusUnread,
		}
		if err := d.notifications.Create(ctx, record); err != nil {
			d.logger.Error("create notification record",
				zap.String("job_id", job.ID),
				zap.String("user_id", recipient),
				zap.Error(err))
			continue
		}

		if d.registry != nil {
			if err := d.registry.Publish(ctx, recipient, record); err != nil {
				d.logger.Debug("live push skipped",
					zap.String("user_id", recipient),
					zap.Error(err))
			}
		}

		d.sendEmail(ctx, job, recipient)
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, job Job, recipient string) {
	if d.email == nil {
		return
	}
	user, err := d.users.GetByID(ctx, recipient)
	if err != nil {
		d.logger.Warn("resolve notification recipient",
			zap.String("user_id", recipient),
			zap.Error(err))
		return
	}
	if err := d.email.Send(ctx, user.Email, job.Title, job.Message); err != nil {
		d.logger.Error("email delivery failed",
			zap.String("job_id", job.ID),
			zap.String("user_id", recipient),
			zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/pkg/jobs"
	"github.com/bdu-suport/bdu-suport-api/pkg/mailer"
)

const jobTypeSendEmail = "send_email"

// MailDispatcher hands email messages to a background worker queue so callers
// never block on delivery. Delivery failures are retried by the queue and
// logged; they are invisible to the enqueuing request.
type MailDispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// MailDispatcherConfig sizes the underlying queue.
type MailDispatcherConfig struct {
	Workers    int
	MaxRetries int
}

// NewMailDispatcher wires a sender behind a retrying queue.
func NewMailDispatcher(sender mailer.Sender, cfg MailDispatcherConfig, logger *zap.Logger) *MailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mailer.Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sender.Send(msg)
	}

	queue := jobs.NewQueue("mailer", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})

	return &MailDispatcher{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (d *MailDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the queue workers.
func (d *MailDispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues the message for asynchronous delivery.
func (d *MailDispatcher) Dispatch(msg mailer.Message) error {
	return d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeSendEmail,
		Payload: msg,
	})
}

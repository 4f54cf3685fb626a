package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. Emit never fails the caller:
// with an inbox configured it queues for a Worker, otherwise it appends
// directly and logs sink errors.
type Publisher struct {
	store  Store
	inbox  chan<- Event
	logger *slog.Logger
}

type Option func(*Publisher)

// WithInbox makes Emit non-blocking; events are dropped when the inbox is full.
func WithInbox(inbox chan<- Event) Option {
	return func(p *Publisher) {
		p.inbox = inbox
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", event.Action,
				"item_id", event.ItemID,
			)
		}
		return
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"item_id", event.ItemID,
			"error", err,
		)
	}
}

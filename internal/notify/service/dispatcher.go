package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wishlist/internal/notify/metrics"
	"wishlist/internal/notify/models"
)

const (
	defaultQueueSize     = 256
	defaultWorkers       = 4
	defaultNotifyTimeout = 5 * time.Second
)

// Notifier is the synchronous fan-out the dispatcher drives.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Dispatcher queues notifications after a ledger commit and runs fan-out on
// background workers so delivery never blocks the mutating request.
type Dispatcher struct {
	notifier Notifier
	queue    chan models.Notification
	workers  int
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type DispatcherOption func(*Dispatcher)

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan models.Notification, n)
		}
	}
}

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithDispatchMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(notifier Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		queue:    make(chan models.Notification, defaultQueueSize),
		workers:  defaultWorkers,
		timeout:  defaultNotifyTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue hands n to the workers. It never blocks and reports false when the
// queue is full.
func (d *Dispatcher) Enqueue(n models.Notification) bool {
	select {
	case d.queue <- n:
		d.metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.IncDropped()
		return false
	}
}

// Run processes the queue until ctx is cancelled, then drains what is
// already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range d.workers {
		wg.Go(func() {
			d.work(ctx)
		})
	}
	wg.Wait()
	d.drain()
	return nil
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.dispatch(ctx, n)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.dispatch(context.Background(), n)
		default:
			d.metrics.SetQueueDepth(0)
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, n models.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.logger.WarnContext(ctx, "notification fan-out incomplete",
			"wishlist_id", n.Wishlist.ID,
			"item_id", n.ItemID,
			"action", n.Action,
			"error", err,
		)
	}
}

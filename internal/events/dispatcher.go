package events

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/slackjohn/internal/metrics"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
)

const (
	defaultQueueSize = 256
	defaultWorkers   = 4
)

// Dispatcher decouples webhook acknowledgment from event handling: the
// HTTP controller enqueues and returns, a fixed worker pool drains the
// queue. Enqueue never blocks; under sustained backpressure events are
// dropped and counted rather than stalling the acknowledgment deadline.
type Dispatcher struct {
	router  *Router
	queue   chan *Envelope
	workers int
}

// NewDispatcher creates a Dispatcher with a bounded queue. queueSize and
// workers fall back to defaults when non-positive.
func NewDispatcher(r *Router, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Dispatcher{
		router:  r,
		queue:   make(chan *Envelope, queueSize),
		workers: workers,
	}
}

// Enqueue hands an envelope to the worker pool without blocking.
// Returns false when the queue is full and the event was dropped.
func (d *Dispatcher) Enqueue(ctx context.Context, env *Envelope) bool {
	select {
	case d.queue <- env:
		return true
	default:
		metrics.EventsDropped.Inc()
		logger.From(ctx).Warn("dispatch queue full, dropping event",
			logger.Component("events"),
			logger.TeamID(env.TeamID),
			logger.EventType(env.Event.Type),
		)
		return false
	}
}

// Run drains the queue with the worker pool until ctx is cancelled,
// then finishes in-flight handlers and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case env := <-d.queue:
					d.dispatch(ctx, env)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, env *Envelope) {
	if err := d.router.Handle(ctx, env); err != nil {
		logger.From(ctx).Error("event handling failed",
			logger.Component("events"),
			logger.TeamID(env.TeamID),
			logger.EventType(env.Event.Type),
			logger.Err(err),
		)
		return
	}
	metrics.EventsRouted.Inc()
}

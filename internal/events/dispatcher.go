package events

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-flood-alerts/internal/models"
	"github.com/mr1hm/go-flood-alerts/internal/observability"
	"github.com/mr1hm/go-flood-alerts/internal/worker"
)

// Dispatcher hands report events to a worker pool that publishes them.
type Dispatcher struct {
	pool      *worker.WorkerPool[models.ReportEvent]
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

type DispatcherConfig struct {
	Workers    int
	BufferSize int
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

func NewDispatcher(publisher Publisher, cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	d.pool = worker.NewWorkerPool(cfg.Workers, cfg.BufferSize, d.process)
	d.pool.OnError(func(ev models.ReportEvent, err error) {
		d.logger.Error("failed to publish report event",
			"type", ev.Type,
			"report_id", ev.ReportID,
			"error", err,
		)
		d.count(ev, "error")
	})
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.pool.Start(ctx)
}

// Dispatch queues ev for publishing. OccurredAt defaults to now.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.ReportEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = d.clock.Now().UTC()
	}
	return d.pool.Submit(ctx, ev)
}

// Stop drains queued events, then closes the publisher.
func (d *Dispatcher) Stop() error {
	if n := d.pool.Pending(); n > 0 {
		d.logger.Info("draining report events", "pending", n)
	}
	d.pool.Stop()
	return d.publisher.Close()
}

func (d *Dispatcher) process(ctx context.Context, ev models.ReportEvent) error {
	if err := d.publisher.Publish(ctx, ev); err != nil {
		return err
	}
	d.count(ev, "published")
	return nil
}

func (d *Dispatcher) count(ev models.ReportEvent, outcome string) {
	if d.metrics != nil {
		d.metrics.ReportEvents.WithLabelValues(string(ev.Type), outcome).Inc()
	}
}

// Package events delivers flood report lifecycle events to downstream
// consumers, asynchronously and off the request path.
package events

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, ev models.ReportEvent) error
	Close() error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev models.ReportEvent) error {
	p.logger.InfoContext(ctx, "flood report event",
		"type", ev.Type,
		"report_id", ev.ReportID,
		"occurred_at", ev.OccurredAt,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

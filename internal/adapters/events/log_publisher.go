package events

import (
	"context"
	"log/slog"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
)

// LogPublisher writes domain events to the request logger. It is used when no
// SNS topic is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Ensure LogPublisher implements gateways.EventPublisher
var _ gateways.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	middleware.GetLoggerFromCtx(ctx).Info("Domain event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("actor_id", event.ActorID),
		slog.Any("recipients", event.Recipients))
	metrics.EventsPublished.WithLabelValues(string(event.Type), "logged").Inc()
	return nil
}

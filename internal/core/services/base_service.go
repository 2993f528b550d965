package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Events   gateways.EventPublisher
	Notifier portssvc.ChatNotifier
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// RequireActiveUser loads userID and refuses suspended accounts. A token issued
// before the suspension stays valid, so every state-changing call checks again.
func (s *BaseService) RequireActiveUser(ctx context.Context, users portsrepo.UserReader, userID string) (*domain.User, error) {
	user, err := users.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load user", slog.String("user_id", userID))
		}
		return nil, err
	}
	if user.Suspended {
		return nil, fmt.Errorf("%w: account is suspended", apperrors.ErrForbidden)
	}
	return user, nil
}

// PublishEvent hands a committed change to the event publisher and notifies the
// live connections of its recipients. Failures are logged and never undo the change.
func (s *BaseService) PublishEvent(ctx context.Context, eventType domain.EventType, aggregateID, actorID string, recipients []string, data map[string]any) {
	event := domain.DomainEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		Recipients:  recipients,
		Data:        data,
		OccurredAt:  time.Now().UTC(),
	}

	if s.Events != nil {
		outcome := "ok"
		if err := s.Events.Publish(ctx, event); err != nil {
			outcome = "error"
			s.LogError(ctx, err, "Failed to publish domain event",
				slog.String("event_type", string(eventType)),
				slog.String("aggregate_id", aggregateID))
		}
		metrics.EventsPublished.WithLabelValues(string(eventType), outcome).Inc()
	}

	if s.Notifier != nil {
		for _, userID := range recipients {
			s.Notifier.Push(userID, portssvc.ChatEventNotification, event)
		}
	}
}

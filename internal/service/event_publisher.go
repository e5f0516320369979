package service

import (
	"context"
	"errors"

	"medstudy-be/internal/pkg/logger"
	"medstudy-be/pkg/events"
)

// ErrReviewUnavailable is returned when the review system cannot be reached.
var ErrReviewUnavailable = errors.New("review system unavailable")

// IEventPublisher is satisfied by the NATS publisher.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishEvent sends an auxiliary event. Failures are logged and never fail the request.
func publishEvent(ctx context.Context, log logger.ILogger, module string, publisher IEventPublisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

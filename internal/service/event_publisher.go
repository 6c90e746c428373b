package service

import (
	"context"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/events"
)

// IEventPublisher sends domain events to other deployments. *nats.Publisher satisfies it.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishQuietly logs publish failures and never returns them.
func publishQuietly(ctx context.Context, pub IEventPublisher, log logger.ILogger, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

package service

import (
	"context"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/events"
	pktNats "docqa-be/pkg/nats"
)

// EventSubscriber is satisfied by *nats.Subscriber.
type EventSubscriber interface {
	SubscribeBroadcast(ctx context.Context, eventType string, handler pktNats.EventHandler) error
}

// ICacheInvalidationService drops local state for documents deleted through another instance.
type ICacheInvalidationService interface {
	Start(ctx context.Context) error
}

type cacheInvalidationService struct {
	subscriber EventSubscriber
	indexer    IIndexerService
	log        logger.ILogger
}

func NewCacheInvalidationService(subscriber EventSubscriber, indexer IIndexerService, log logger.ILogger) ICacheInvalidationService {
	return &cacheInvalidationService{subscriber: subscriber, indexer: indexer, log: log}
}

func (s *cacheInvalidationService) Start(ctx context.Context) error {
	return s.subscriber.SubscribeBroadcast(ctx, events.DocumentDeleted, s.handle)
}

func (s *cacheInvalidationService) handle(ctx context.Context, event events.Event) error {
	fileId, ok := events.FileID(event)
	if !ok {
		s.log.Warn(indexerModule, "Document deleted event without file_id", map[string]interface{}{"payload": event.Payload()})
		return nil
	}
	// Forget is idempotent, so the instance that performed the delete may run it twice
	if err := s.indexer.Forget(ctx, fileId); err != nil {
		s.log.Error(indexerModule, "Failed to drop deleted document", map[string]interface{}{
			"file_id": fileId,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService pre-indexes freshly uploaded documents so the first question does not pay for extraction.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	indexer    IIndexerService
	log        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	indexer IIndexerService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		indexer:    indexer,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishDocumentUploadedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error(indexerModule, "Failed to unmarshal upload message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // redelivery cannot fix a bad payload
		return
	}

	file, err := cs.uowFactory.NewUnitOfWork(ctx).FileRepository().FindById(ctx, payload.FileId)
	if err != nil {
		cs.log.Error(indexerModule, "Failed to load uploaded document", map[string]interface{}{
			"file_id": payload.FileId,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if file == nil {
		// deleted before we got to it
		msg.Ack()
		return
	}

	pf, err := cs.indexer.EnsureIndexed(ctx, file)
	if err != nil {
		// the failure is recorded in the processed cache; retrying here would only repeat it
		cs.log.Error(indexerModule, "Pre-indexing failed", map[string]interface{}{
			"file_id": file.Id,
			"error":   err.Error(),
		})
		msg.Ack()
		return
	}

	cs.log.Info(indexerModule, "Uploaded document ready", map[string]interface{}{
		"file_id": file.Id,
		"status":  pf.Status,
		"chunks":  pf.ChunkCount,
	})
	msg.Ack()
}

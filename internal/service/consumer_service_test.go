package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadTopic = "DOCUMENT_UPLOADED"

func startConsumer(t *testing.T, f *ragFixture) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	consumer := NewConsumerService(pubSub, uploadTopic, f.store.NewRepositoryFactory(), f.indexer, nopLog())
	require.NoError(t, consumer.Consume(ctx))
	return NewPublisherService(uploadTopic, pubSub)
}

func TestConsumer_PreIndexesUploadedDocument(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)
	pub := startConsumer(t, f)

	require.NoError(t, pub.Publish(context.Background(), []byte(`{"file_id":`+uintString(file.Id)+`}`)))

	assert.Eventually(t, func() bool { return f.index.Len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.extractor.Calls())
}

func TestConsumer_SkipsBadAndUnknownMessages(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)
	pub := startConsumer(t, f)

	require.NoError(t, pub.Publish(context.Background(), []byte("not json")))
	require.NoError(t, pub.Publish(context.Background(), []byte(`{"file_id":999}`)))
	require.NoError(t, pub.Publish(context.Background(), []byte(`{"file_id":`+uintString(file.Id)+`}`)))

	// messages are handled in order, so the last one being indexed means the first two were acked
	assert.Eventually(t, func() bool { return f.index.Len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestConsumer_AcksWhenIndexingFails(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)
	f.embedder.batchErr = errBoom

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"file_id":`+uintString(file.Id)+`}`))
	cs := NewConsumerService(nil, uploadTopic, f.store.NewRepositoryFactory(), f.indexer, nopLog()).(*consumerService)
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

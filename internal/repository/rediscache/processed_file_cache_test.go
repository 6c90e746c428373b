package rediscache

import (
	"context"
	"os"
	"testing"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedFileCache_Redis(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx := context.Background()
	c := NewProcessedFileCache(rdb, logger.NewNopLogger())
	const fileId = 987654
	require.NoError(t, c.Invalidate(ctx, fileId))

	wrote, err := c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: fileId, ContentHash: "h1", ChunkCount: 2})
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: fileId, ContentHash: "h1", ChunkCount: 5})
	require.NoError(t, err)
	assert.False(t, wrote)

	got, ok := c.Get(ctx, fileId, "h1")
	require.True(t, ok)
	assert.Equal(t, 2, got.ChunkCount)

	require.NoError(t, c.Invalidate(ctx, fileId))
	_, ok = c.Get(ctx, fileId, "h1")
	assert.False(t, ok)
}

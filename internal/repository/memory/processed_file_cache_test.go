package memory

import (
	"context"
	"testing"

	"docqa-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedFileCache_FirstWriterWins(t *testing.T) {
	ctx := context.Background()
	c := NewProcessedFileCache()

	first := &entity.ProcessedFile{FileId: 1, ContentHash: "abc", ChunkCount: 3}
	second := &entity.ProcessedFile{FileId: 1, ContentHash: "abc", ChunkCount: 9}

	wrote, err := c.MarkProcessed(ctx, first)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = c.MarkProcessed(ctx, second)
	require.NoError(t, err)
	assert.False(t, wrote)

	got, ok := c.Get(ctx, 1, "abc")
	require.True(t, ok)
	assert.Equal(t, 3, got.ChunkCount)
}

func TestProcessedFileCache_KeyedByContentHash(t *testing.T) {
	ctx := context.Background()
	c := NewProcessedFileCache()

	_, _ = c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: 4, ContentHash: "old"})

	_, ok := c.Get(ctx, 4, "new")
	assert.False(t, ok)
	_, ok = c.Get(ctx, 4, "old")
	assert.True(t, ok)
}

func TestProcessedFileCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewProcessedFileCache()

	_, _ = c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: 1, ContentHash: "a"})
	_, _ = c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: 1, ContentHash: "b"})
	_, _ = c.MarkProcessed(ctx, &entity.ProcessedFile{FileId: 11, ContentHash: "a"})

	require.NoError(t, c.Invalidate(ctx, 1))

	_, ok := c.Get(ctx, 1, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, 1, "b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, 11, "a")
	assert.True(t, ok, "prefix match must not cross document ids")
}

package memory

import (
	"context"
	"fmt"
	"strings"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// ProcessedFileCache is the process-local cache. Entries never expire; a process restart
// forgets them and the vector index dedup check takes over.
type ProcessedFileCache struct {
	cache *cache.Cache
}

func NewProcessedFileCache() contract.ProcessedFileCache {
	return &ProcessedFileCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func processedKey(fileId uint, contentHash string) string {
	return fmt.Sprintf("%d:%s", fileId, contentHash)
}

func (c *ProcessedFileCache) Get(ctx context.Context, fileId uint, contentHash string) (*entity.ProcessedFile, bool) {
	if x, found := c.cache.Get(processedKey(fileId, contentHash)); found {
		return x.(*entity.ProcessedFile), true
	}
	return nil, false
}

func (c *ProcessedFileCache) MarkProcessed(ctx context.Context, processed *entity.ProcessedFile) (bool, error) {
	// Add fails when the key exists, so the first writer wins.
	if err := c.cache.Add(processedKey(processed.FileId, processed.ContentHash), processed, cache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *ProcessedFileCache) Invalidate(ctx context.Context, fileId uint) error {
	prefix := fmt.Sprintf("%d:", fileId)
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

package rediscache

import (
	"context"
	"encoding/json"
	"fmt"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docqa:processed:"

// ProcessedFileCache shares processed markers between instances through redis.
// Read failures degrade to a cache miss.
type ProcessedFileCache struct {
	rdb    redis.UniversalClient
	logger logger.ILogger
}

func NewProcessedFileCache(rdb redis.UniversalClient, log logger.ILogger) contract.ProcessedFileCache {
	return &ProcessedFileCache{rdb: rdb, logger: log}
}

func key(fileId uint, contentHash string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, fileId, contentHash)
}

func (c *ProcessedFileCache) Get(ctx context.Context, fileId uint, contentHash string) (*entity.ProcessedFile, bool) {
	raw, err := c.rdb.Get(ctx, key(fileId, contentHash)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("CACHE", "Redis get failed, treating as miss", map[string]interface{}{
				"file_id": fileId,
				"error":   err.Error(),
			})
		}
		return nil, false
	}

	var processed entity.ProcessedFile
	if err := json.Unmarshal(raw, &processed); err != nil {
		c.logger.Warn("CACHE", "Corrupt processed marker", map[string]interface{}{
			"file_id": fileId,
			"error":   err.Error(),
		})
		return nil, false
	}
	return &processed, true
}

func (c *ProcessedFileCache) MarkProcessed(ctx context.Context, processed *entity.ProcessedFile) (bool, error) {
	raw, err := json.Marshal(processed)
	if err != nil {
		return false, fmt.Errorf("marshal processed marker: %w", err)
	}
	stored, err := c.rdb.SetNX(ctx, key(processed.FileId, processed.ContentHash), raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return stored, nil
}

func (c *ProcessedFileCache) Invalidate(ctx context.Context, fileId uint) error {
	pattern := fmt.Sprintf("%s%d:*", keyPrefix, fileId)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

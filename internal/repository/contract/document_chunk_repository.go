package contract

import (
	"context"

	"docqa-be/internal/entity"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	// SearchByDistance returns the nearest chunks by cosine distance, ties broken by id.
	SearchByDistance(ctx context.Context, embedding []float32, limit int) ([]entity.ScoredChunk, error)
	ExistsByFileId(ctx context.Context, fileId uint) (bool, error)
	DeleteByFileId(ctx context.Context, fileId uint) error
	Count(ctx context.Context) (int64, error)
}

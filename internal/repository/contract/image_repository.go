package contract

import (
	"context"

	"docqa-be/internal/entity"
)

type ImageRepository interface {
	CreateBulk(ctx context.Context, images []*entity.Image) error
	FindByFileAndChunk(ctx context.Context, fileId uint, chunkIndex int) ([]*entity.Image, error)
	DeleteByFileId(ctx context.Context, fileId uint) error
}

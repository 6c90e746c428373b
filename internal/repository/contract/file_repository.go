package contract

import (
	"context"

	"docqa-be/internal/entity"
)

type FileRepository interface {
	Create(ctx context.Context, file *entity.File) error
	FindById(ctx context.Context, id uint) (*entity.File, error)
	FindByUserAndHash(ctx context.Context, userId uint, contentHash string) (*entity.File, error)
	// FindAllByTypes lists every document of the given formats, oldest first.
	FindAllByTypes(ctx context.Context, types []entity.FileType) ([]*entity.File, error)
	FindAllByUser(ctx context.Context, userId uint) ([]*entity.File, error)
	Delete(ctx context.Context, id uint) error
}

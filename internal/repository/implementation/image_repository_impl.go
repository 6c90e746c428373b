package implementation

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ImageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ImageMapper
}

func NewImageRepository(db *gorm.DB) contract.ImageRepository {
	return &ImageRepositoryImpl{
		db:     db,
		mapper: mapper.NewImageMapper(),
	}
}

func (r *ImageRepositoryImpl) CreateBulk(ctx context.Context, images []*entity.Image) error {
	if len(images) == 0 {
		return nil
	}
	models := make([]*model.Image, len(images))
	for i, img := range images {
		models[i] = r.mapper.ToModel(img)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		images[i].Id = m.Id
	}
	return nil
}

func (r *ImageRepositoryImpl) FindByFileAndChunk(ctx context.Context, fileId uint, chunkIndex int) ([]*entity.Image, error) {
	var models []*model.Image
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByFileID{FileID: fileId},
		specification.ByChunkIndex{ChunkIndex: chunkIndex},
		specification.OrderBy{Field: "image_index"},
	).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ImageRepositoryImpl) DeleteByFileId(ctx context.Context, fileId uint) error {
	return r.db.WithContext(ctx).Where("file_id = ?", fileId).Delete(&model.Image{}).Error
}

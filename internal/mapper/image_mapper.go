package mapper

import (
	"docqa-be/internal/entity"
	"docqa-be/internal/model"
)

type ImageMapper struct{}

func NewImageMapper() *ImageMapper {
	return &ImageMapper{}
}

func (m *ImageMapper) ToEntity(i *model.Image) *entity.Image {
	if i == nil {
		return nil
	}
	return &entity.Image{
		Id:          i.Id,
		ChunkId:     i.ChunkId,
		FileId:      i.FileId,
		ChunkIndex:  i.ChunkIndex,
		PageNumber:  i.PageNumber,
		ImageIndex:  i.ImageIndex,
		ImageData:   i.ImageData,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
	}
}

func (m *ImageMapper) ToModel(i *entity.Image) *model.Image {
	if i == nil {
		return nil
	}
	return &model.Image{
		Id:          i.Id,
		ChunkId:     i.ChunkId,
		FileId:      i.FileId,
		ChunkIndex:  i.ChunkIndex,
		PageNumber:  i.PageNumber,
		ImageIndex:  i.ImageIndex,
		ImageData:   i.ImageData,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
	}
}

func (m *ImageMapper) ToEntities(images []*model.Image) []*entity.Image {
	entities := make([]*entity.Image, len(images))
	for i, img := range images {
		entities[i] = m.ToEntity(img)
	}
	return entities
}

package mapper

import (
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"
)

type FileMapper struct{}

func NewFileMapper() *FileMapper {
	return &FileMapper{}
}

func (m *FileMapper) ToEntity(f *model.File) *entity.File {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.File{
		Id:               f.Id,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FilePath:         f.FilePath,
		FileSize:         f.FileSize,
		FileType:         entity.FileType(f.FileType),
		ContentHash:      f.ContentHash,
		UserId:           f.UserId,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *FileMapper) ToModel(f *entity.File) *model.File {
	if f == nil {
		return nil
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.File{
		Id:               f.Id,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FilePath:         f.FilePath,
		FileSize:         f.FileSize,
		FileType:         string(f.FileType),
		ContentHash:      f.ContentHash,
		UserId:           f.UserId,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *FileMapper) ToEntities(files []*model.File) []*entity.File {
	entities := make([]*entity.File, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}

package specification

import (
	"docqa-be/internal/entity"

	"gorm.io/gorm"
)

type ByFileTypes struct {
	Types []entity.FileType
}

func (s ByFileTypes) Apply(db *gorm.DB) *gorm.DB {
	types := make([]string, len(s.Types))
	for i, t := range s.Types {
		types[i] = string(t)
	}
	return db.Where("file_type IN ?", types)
}

type ByContentHash struct {
	Hash string
}

func (s ByContentHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_hash = ?", s.Hash)
}

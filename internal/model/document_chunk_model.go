package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EmbeddingDimension is fixed by the vector(384) column; all-MiniLM-L6-v2 sized.
const EmbeddingDimension = 384

type DocumentChunk struct {
	Id            uint            `gorm:"primaryKey;autoIncrement"`
	FileId        uint            `gorm:"not null;uniqueIndex:idx_chunks_file_index"`
	ChunkIndex    int             `gorm:"not null;uniqueIndex:idx_chunks_file_index"`
	PageNumber    *int            `gorm:"type:integer"`
	Text          string          `gorm:"type:text;not null"`
	Embedding     pgvector.Vector `gorm:"type:vector(384);not null"`
	ChunkMetadata datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`

	File *File `gorm:"foreignKey:FileId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

// ScoredDocumentChunk is a document_chunks row projected with its distance and owning filename.
type ScoredDocumentChunk struct {
	DocumentChunk
	Filename string
	Distance float64
}

package mapper

import (
	"encoding/json"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(c.ChunkMetadata) > 0 {
		_ = json.Unmarshal(c.ChunkMetadata, &metadata)
	}

	var filename string
	if c.File != nil {
		filename = c.File.OriginalFilename
	}

	return &entity.DocumentChunk{
		Id:         c.Id,
		FileId:     c.FileId,
		ChunkIndex: c.ChunkIndex,
		PageNumber: c.PageNumber,
		Text:       c.Text,
		Embedding:  c.Embedding.Slice(),
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
		Filename:   filename,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(c.Metadata) > 0 {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.DocumentChunk{
		Id:            c.Id,
		FileId:        c.FileId,
		ChunkIndex:    c.ChunkIndex,
		PageNumber:    c.PageNumber,
		Text:          c.Text,
		Embedding:     pgvector.NewVector(c.Embedding),
		ChunkMetadata: metadata,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToScored(s *model.ScoredDocumentChunk) entity.ScoredChunk {
	chunk := m.ToEntity(&s.DocumentChunk)
	chunk.Filename = s.Filename
	return entity.ScoredChunk{Chunk: chunk, Distance: s.Distance}
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

package implementation

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		chunks[i].Id = m.Id
		chunks[i].CreatedAt = m.CreatedAt
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) SearchByDistance(ctx context.Context, embedding []float32, limit int) ([]entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector <=> is cosine distance: 1 - cosine_similarity
	var rows []model.ScoredDocumentChunk
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, files.original_filename AS filename, document_chunks.embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		Joins("JOIN files ON files.id = document_chunks.file_id").
		Order("distance ASC").
		Order("document_chunks.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]entity.ScoredChunk, len(rows))
	for i := range rows {
		results[i] = r.mapper.ToScored(&rows[i])
	}
	return results, nil
}

func (r *DocumentChunkRepositoryImpl) ExistsByFileId(ctx context.Context, fileId uint) (bool, error) {
	var count int64
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.DocumentChunk{}),
		specification.ByFileID{FileID: fileId},
	).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *DocumentChunkRepositoryImpl) DeleteByFileId(ctx context.Context, fileId uint) error {
	return r.db.WithContext(ctx).Where("file_id = ?", fileId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

package vectorindex

import (
	"context"
	"fmt"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/unitofwork"
)

// PgvectorIndex keeps embeddings in the document_chunks table and searches with the <=> operator.
type PgvectorIndex struct {
	uowFactory unitofwork.RepositoryFactory
	dimension  int
}

var _ Index = (*PgvectorIndex)(nil)

func NewPgvectorIndex(uowFactory unitofwork.RepositoryFactory, dimension int) *PgvectorIndex {
	return &PgvectorIndex{uowFactory: uowFactory, dimension: dimension}
}

func (p *PgvectorIndex) Index(ctx context.Context, chunks []*entity.DocumentChunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != p.dimension {
			return fmt.Errorf("%w: chunk %d of file %d has %d, want %d", ErrInvalidVector, c.ChunkIndex, c.FileId, len(c.Embedding), p.dimension)
		}
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return err
	}
	return uow.Commit()
}

func (p *PgvectorIndex) Query(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	if len(vector) != p.dimension {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrInvalidVector, len(vector), p.dimension)
	}
	return p.uowFactory.NewUnitOfWork(ctx).DocumentChunkRepository().SearchByDistance(ctx, vector, k)
}

func (p *PgvectorIndex) DeleteByDocument(ctx context.Context, fileId uint) error {
	return p.uowFactory.NewUnitOfWork(ctx).DocumentChunkRepository().DeleteByFileId(ctx, fileId)
}

func (p *PgvectorIndex) HasDocument(ctx context.Context, fileId uint) (bool, error) {
	return p.uowFactory.NewUnitOfWork(ctx).DocumentChunkRepository().ExistsByFileId(ctx, fileId)
}

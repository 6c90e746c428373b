package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/vectorindex"
)

const indexerModule = "INDEXER"

// DocumentExtractor is satisfied by *extract.Registry.
type DocumentExtractor interface {
	Process(ctx context.Context, format, path string) (*extract.Result, error)
}

// IIndexerService makes sure documents are extracted, embedded and searchable.
type IIndexerService interface {
	// EnsureIndexed returns the processed record for the document, extracting it first when needed.
	// Extraction failures are recorded and logged, not returned. Embedding and index failures are returned.
	EnsureIndexed(ctx context.Context, file *entity.File) (*entity.ProcessedFile, error)
	// Reindex drops everything stored for the document and indexes it again.
	Reindex(ctx context.Context, file *entity.File) (*entity.ProcessedFile, error)
	// Forget removes the document from the vector index and the processed cache.
	Forget(ctx context.Context, fileId uint) error
}

type indexerService struct {
	uowFactory unitofwork.RepositoryFactory
	extractor  DocumentExtractor
	embedder   embedding.EmbeddingProvider
	index      vectorindex.Index
	cache      contract.ProcessedFileCache
	events     IEventPublisher
	log        logger.ILogger
	linkChunks bool
	locks      *keyedMutex
	now        func() time.Time
}

func NewIndexerService(
	uowFactory unitofwork.RepositoryFactory,
	extractor DocumentExtractor,
	embedder embedding.EmbeddingProvider,
	index vectorindex.Index,
	cache contract.ProcessedFileCache,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IIndexerService {
	// image rows can reference chunk rows only when chunks live in the same database
	_, linkChunks := index.(*vectorindex.PgvectorIndex)
	return &indexerService{
		uowFactory: uowFactory,
		extractor:  extractor,
		embedder:   embedder,
		index:      index,
		cache:      cache,
		events:     eventPublisher,
		log:        log,
		linkChunks: linkChunks,
		locks:      newKeyedMutex(),
		now:        time.Now,
	}
}

func (s *indexerService) EnsureIndexed(ctx context.Context, file *entity.File) (*entity.ProcessedFile, error) {
	if pf, ok := s.cache.Get(ctx, file.Id, file.ContentHash); ok {
		return pf, nil
	}

	unlock := s.locks.Lock(file.Id)
	defer unlock()

	// another request may have finished while we waited
	if pf, ok := s.cache.Get(ctx, file.Id, file.ContentHash); ok {
		return pf, nil
	}

	exists, err := s.index.HasDocument(ctx, file.Id)
	if err != nil {
		return nil, fmt.Errorf("check index for file %d: %w", file.Id, err)
	}
	if exists {
		// indexed by an earlier run or another instance; images are read back from the image table
		s.log.Debug(indexerModule, "Document already in vector index", map[string]interface{}{"file_id": file.Id})
		return s.mark(ctx, file, entity.ProcessedIndexed, 0, nil)
	}

	return s.extractAndIndex(ctx, file)
}

func (s *indexerService) Reindex(ctx context.Context, file *entity.File) (*entity.ProcessedFile, error) {
	unlock := s.locks.Lock(file.Id)
	defer unlock()

	if err := s.forget(ctx, file.Id); err != nil {
		return nil, err
	}
	return s.extractAndIndex(ctx, file)
}

func (s *indexerService) Forget(ctx context.Context, fileId uint) error {
	unlock := s.locks.Lock(fileId)
	defer unlock()
	return s.forget(ctx, fileId)
}

func (s *indexerService) forget(ctx context.Context, fileId uint) error {
	if err := s.index.DeleteByDocument(ctx, fileId); err != nil {
		return fmt.Errorf("delete vectors of file %d: %w", fileId, err)
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).ImageRepository().DeleteByFileId(ctx, fileId); err != nil {
		return fmt.Errorf("delete images of file %d: %w", fileId, err)
	}
	return s.cache.Invalidate(ctx, fileId)
}

func (s *indexerService) extractAndIndex(ctx context.Context, file *entity.File) (*entity.ProcessedFile, error) {
	details := map[string]interface{}{"file_id": file.Id, "filename": file.OriginalFilename}
	started := s.now()

	result, err := s.extractor.Process(ctx, string(file.FileType), file.FilePath)
	if err != nil {
		s.log.Error(indexerModule, "Content extraction failed", withError(details, err))
		return s.mark(ctx, file, entity.ProcessedFailed, 0, nil)
	}
	if len(result.Chunks) == 0 {
		s.log.Warn(indexerModule, "No text extracted from document", details)
		return s.mark(ctx, file, entity.ProcessedEmpty, 0, nil)
	}

	texts := make([]string, len(result.Chunks))
	for i, c := range result.Chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		s.log.Error(indexerModule, "Embedding failed", withError(details, err))
		s.markQuietly(ctx, file, entity.ProcessedFailed)
		return nil, fmt.Errorf("embed %s: %w", file.OriginalFilename, err)
	}

	now := s.now()
	chunks := make([]*entity.DocumentChunk, len(result.Chunks))
	for i, c := range result.Chunks {
		metadata := make(map[string]interface{}, len(c.Metadata)+1)
		for k, v := range c.Metadata {
			metadata[k] = v
		}
		metadata["filename"] = file.OriginalFilename
		chunks[i] = &entity.DocumentChunk{
			FileId:     file.Id,
			ChunkIndex: c.Index,
			PageNumber: c.PageNumber,
			Text:       c.Text,
			Embedding:  vectors[i],
			Metadata:   metadata,
			CreatedAt:  now,
			Filename:   file.OriginalFilename,
		}
	}
	if err := s.index.Index(ctx, chunks); err != nil {
		s.log.Error(indexerModule, "Vector index write failed", withError(details, err))
		s.markQuietly(ctx, file, entity.ProcessedFailed)
		return nil, fmt.Errorf("index %s: %w", file.OriginalFilename, err)
	}

	chunkImages := s.persistImages(ctx, file, chunks, extract.AssociateImages(result.Chunks, result.Images))

	pf, err := s.mark(ctx, file, entity.ProcessedIndexed, len(chunks), chunkImages)
	if err != nil {
		return nil, err
	}

	s.log.Info(indexerModule, "Document indexed", map[string]interface{}{
		"file_id":     file.Id,
		"filename":    file.OriginalFilename,
		"chunks":      len(chunks),
		"images":      len(result.Images),
		"duration_ms": s.now().Sub(started).Milliseconds(),
	})
	return pf, nil
}

// persistImages stores chunk images and returns them keyed by chunk index. Storage errors are logged
// and the in-memory mapping is still returned so this process can serve the images.
func (s *indexerService) persistImages(ctx context.Context, file *entity.File, chunks []*entity.DocumentChunk, byChunk map[int][]extract.RawImage) map[int][]string {
	if len(byChunk) == 0 {
		return nil
	}

	chunkImages := make(map[int][]string, len(byChunk))
	var rows []*entity.Image
	for _, c := range chunks {
		chunkIndex := c.ChunkIndex
		for i, img := range byChunk[chunkIndex] {
			chunkImages[chunkIndex] = append(chunkImages[chunkIndex], img.Base64)

			description := imageDescription(file.OriginalFilename, chunkIndex)
			row := &entity.Image{
				FileId:      file.Id,
				ChunkIndex:  chunkIndex,
				PageNumber:  img.PageNumber,
				ImageIndex:  i,
				ImageData:   img.Base64,
				Description: &description,
				CreatedAt:   s.now(),
			}
			if s.linkChunks && c.Id != 0 {
				id := c.Id
				row.ChunkId = &id
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).ImageRepository().CreateBulk(ctx, rows); err != nil {
		s.log.Warn(indexerModule, "Failed to persist images", map[string]interface{}{
			"file_id": file.Id,
			"count":   len(rows),
			"error":   err.Error(),
		})
	}
	return chunkImages
}

func (s *indexerService) mark(ctx context.Context, file *entity.File, status entity.ProcessedStatus, chunkCount int, chunkImages map[int][]string) (*entity.ProcessedFile, error) {
	pf := &entity.ProcessedFile{
		FileId:      file.Id,
		ContentHash: file.ContentHash,
		Filename:    file.OriginalFilename,
		Status:      status,
		ChunkCount:  chunkCount,
		ChunkImages: chunkImages,
		ProcessedAt: s.now(),
	}

	wrote, err := s.cache.MarkProcessed(ctx, pf)
	if err != nil {
		return nil, fmt.Errorf("mark file %d processed: %w", file.Id, err)
	}
	if !wrote {
		// lost the race to another writer; theirs is authoritative
		if existing, ok := s.cache.Get(ctx, file.Id, file.ContentHash); ok {
			return existing, nil
		}
	}

	if status == entity.ProcessedIndexed && chunkCount > 0 {
		publishQuietly(ctx, s.events, s.log, events.NewDocumentIndexed(file.Id, file.ContentHash, string(status), chunkCount))
	}
	return pf, nil
}

func (s *indexerService) markQuietly(ctx context.Context, file *entity.File, status entity.ProcessedStatus) {
	if _, err := s.mark(ctx, file, status, 0, nil); err != nil {
		s.log.Warn(indexerModule, "Failed to record processing status", map[string]interface{}{
			"file_id": file.Id,
			"error":   err.Error(),
		})
	}
}

func imageDescription(filename string, chunkIndex int) string {
	return fmt.Sprintf("Image from %s (chunk %d)", filename, chunkIndex)
}

func withError(details map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

// keyedMutex serialises work per document id. Entries are dropped when no one holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint]*refLock)}
}

func (k *keyedMutex) Lock(key uint) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

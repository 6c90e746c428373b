package service

import (
	"context"
	"sync"
	"testing"

	"docqa-be/internal/entity"
	"docqa-be/pkg/events"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkImageCount(t *testing.T, f *ragFixture, fileId uint, chunkIndex int) int {
	t.Helper()
	rows, err := f.store.NewRepositoryFactory().NewUnitOfWork(context.Background()).ImageRepository().FindByFileAndChunk(context.Background(), fileId, chunkIndex)
	require.NoError(t, err)
	return len(rows)
}

func TestEnsureIndexed_ConcurrentCallersExtractOnce(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	var wg sync.WaitGroup
	results := make([]*entity.ProcessedFile, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pf, err := f.indexer.EnsureIndexed(context.Background(), file)
			assert.NoError(t, err)
			results[i] = pf
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.extractor.Calls())
	assert.Equal(t, 2, f.index.Len())
	for _, pf := range results {
		require.NotNil(t, pf)
		assert.Equal(t, entity.ProcessedIndexed, pf.Status)
		assert.Equal(t, 2, pf.ChunkCount)
	}
	assert.Equal(t, []string{events.DocumentIndexed}, f.events.Types())
}

func TestEnsureIndexed_StoresImagesPerChunk(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	pf, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, []string{"aW1nMQ=="}, pf.ChunkImages[0])
	assert.Equal(t, []string{"aW1nMg=="}, pf.ChunkImages[1])
	assert.Equal(t, 1, chunkImageCount(t, f, file.Id, 0))
	assert.Equal(t, 1, chunkImageCount(t, f, file.Id, 1))
}

func TestEnsureIndexed_ChunkMetadataCarriesFilename(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	_, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	hits, err := f.index.Query(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, hit := range hits {
		assert.Equal(t, "report.pdf", hit.Chunk.Metadata["filename"])
	}
}

func TestEnsureIndexed_EmptyDocument(t *testing.T) {
	f := newRagFixture()
	file := f.addFile("blank.pdf", 1)

	pf, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, entity.ProcessedEmpty, pf.Status)
	assert.Zero(t, f.index.Len())
	assert.Empty(t, f.events.Types())
}

func TestEnsureIndexed_ExtractionFailureIsRecorded(t *testing.T) {
	f := newRagFixture()
	file := f.addFile("broken.pdf", 1)
	f.extractor.errs[file.FilePath] = errBoom

	pf, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcessedFailed, pf.Status)

	_, err = f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, f.extractor.Calls())
}

type failingIndex struct {
	*vectorindex.MemoryIndex
}

func (failingIndex) Index(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return errBoom
}

func TestEnsureIndexed_IndexFailureIsReturned(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)
	indexer := NewIndexerService(f.store.NewRepositoryFactory(), f.extractor, f.embedder, failingIndex{f.index}, newCache(), f.events, nopLog())

	_, err := indexer.EnsureIndexed(context.Background(), file)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "report.pdf")
	assert.Zero(t, chunkImageCount(t, f, file.Id, 0))
}

func TestEnsureIndexed_NewHashReusesIndexedVectors(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	_, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	// a new hash misses the cache, but the vectors are still there
	changed := *file
	changed.ContentHash = "hash-v2"
	pf, err := f.indexer.EnsureIndexed(context.Background(), &changed)
	require.NoError(t, err)

	assert.Equal(t, 1, f.extractor.Calls())
	assert.Equal(t, entity.ProcessedIndexed, pf.Status)
	assert.Nil(t, pf.ChunkImages)
}

func TestReindex_ReplacesStoredData(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	_, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	f.extractor.results[file.FilePath] = &extract.Result{
		Chunks: []extract.TextChunk{textChunk(0, 1, "Rewritten policy.")},
	}
	pf, err := f.indexer.Reindex(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 2, f.extractor.Calls())
	assert.Equal(t, 1, pf.ChunkCount)
	assert.Equal(t, 1, f.index.Len())
	assert.Zero(t, chunkImageCount(t, f, file.Id, 0))
}

func TestForget_RemovesVectorsImagesAndCacheEntry(t *testing.T) {
	f := newRagFixture()
	file := seedReport(f)

	_, err := f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)

	require.NoError(t, f.indexer.Forget(context.Background(), file.Id))
	assert.Zero(t, f.index.Len())
	assert.Zero(t, chunkImageCount(t, f, file.Id, 0))

	_, err = f.indexer.EnsureIndexed(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 2, f.extractor.Calls())
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock(7)
	assert.Len(t, k.locks, 1)
	unlock()
	assert.Empty(t, k.locks)
}

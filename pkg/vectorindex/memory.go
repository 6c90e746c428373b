package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docqa-be/internal/entity"
)

// MemoryIndex is a brute-force index for tests and single-process development.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	seq       uint
	chunks    []*entity.DocumentChunk
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

func (m *MemoryIndex) Index(ctx context.Context, chunks []*entity.DocumentChunk) error {
	for _, c := range chunks {
		if m.dimension > 0 && len(c.Embedding) != m.dimension {
			return fmt.Errorf("%w: chunk %d of file %d has %d, want %d", ErrInvalidVector, c.ChunkIndex, c.FileId, len(c.Embedding), m.dimension)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.seq++
		stored := *c
		stored.Id = m.seq
		c.Id = stored.Id
		m.chunks = append(m.chunks, &stored)
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	if m.dimension > 0 && len(vector) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrInvalidVector, len(vector), m.dimension)
	}

	m.mu.RLock()
	results := make([]entity.ScoredChunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		hit := *c
		results = append(results, entity.ScoredChunk{Chunk: &hit, Distance: CosineDistance(vector, c.Embedding)})
	}
	m.mu.RUnlock()

	// chunks are kept in insertion order, so a stable sort keeps ties in that order
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MemoryIndex) DeleteByDocument(ctx context.Context, fileId uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.FileId != fileId {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(m.chunks); i++ {
		m.chunks[i] = nil
	}
	m.chunks = kept
	return nil
}

func (m *MemoryIndex) HasDocument(ctx context.Context, fileId uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chunks {
		if c.FileId == fileId {
			return true, nil
		}
	}
	return false, nil
}

// Len reports the number of stored chunks.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

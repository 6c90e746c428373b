package vectorindex

import (
	"context"
	"errors"
	"math"

	"docqa-be/internal/entity"
)

var ErrInvalidVector = errors.New("vector has wrong dimension")

// Index stores chunk embeddings and answers nearest-neighbour queries by cosine distance.
type Index interface {
	// Index stores the chunks. Implementations that own row ids write them back to the chunks.
	Index(ctx context.Context, chunks []*entity.DocumentChunk) error
	// Query returns up to k chunks by ascending distance. Ties keep insertion order.
	Query(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error)
	DeleteByDocument(ctx context.Context, fileId uint) error
	HasDocument(ctx context.Context, fileId uint) (bool, error)
}

// CosineDistance is 1 - cosine similarity. Zero vectors are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmptyResponse     = errors.New("embedding provider returned no vectors")
)

// EmbeddingProvider maps text to fixed-length unit vectors.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Warmup embeds a probe string so a misconfigured model fails at startup rather than on the first question.
func Warmup(ctx context.Context, p EmbeddingProvider) error {
	vec, err := p.Embed(ctx, "warmup")
	if err != nil {
		return fmt.Errorf("embedding warmup: %w", err)
	}
	if len(vec) != p.Dimension() {
		return fmt.Errorf("embedding warmup: %w: got %d, want %d", ErrDimensionMismatch, len(vec), p.Dimension())
	}
	return nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(math.Ceil(rps))
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func checkDimensions(vectors [][]float32, want int) error {
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("%w: vector %d has %d values, want %d", ErrDimensionMismatch, i, len(v), want)
		}
	}
	return nil
}

// normalizeVector scales a vector to unit length so cosine distance is well defined.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

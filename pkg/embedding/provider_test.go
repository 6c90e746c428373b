package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestOllamaProvider_EmbedBatch(t *testing.T) {
	var received ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{3, 4, 0}, {0, 0, 2}}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "all-minilm", 3, 0)
	vectors, err := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", received.Model)
	assert.Equal(t, []string{"a", "b"}, received.Input)
	require.Len(t, vectors, 2)
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 1.0, magnitude(vectors[1]), 1e-6)
}

func TestOllamaProvider_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{1, 2}}})
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "", 384, 0).Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestOllamaProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing", 384, 0).Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOpenAIProvider_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "sk-test", "text-embedding-3-small", 2, 0)
	vectors, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider(srv.URL, "bad", "m", 2, 0).Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestWarmup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{1, 1, 1}}})
	}))
	defer srv.Close()

	assert.NoError(t, Warmup(context.Background(), NewOllamaProvider(srv.URL, "", 3, 0)))
	assert.Error(t, Warmup(context.Background(), NewOllamaProvider("http://127.0.0.1:1", "", 3, 0)))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama", Dimension: 384})
	require.NoError(t, err)
	assert.Equal(t, 384, p.Dimension())

	_, err = NewProvider(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "gemini"})
	assert.Error(t, err)
}

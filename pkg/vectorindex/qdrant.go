package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"docqa-be/internal/entity"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex stores one point per chunk in a cosine collection.
// Point ids pack the file id and chunk index, so re-indexing a document overwrites its points.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

var _ Index = (*QdrantIndex)(nil)

// NewQdrantIndex connects over gRPC. urlStr is the HTTP address; the gRPC port is the next one.
func NewQdrantIndex(urlStr, collection string, dimension int) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{client: client, collection: collection, dimension: dimension}, nil
}

// EnsureCollection creates the collection, or checks its vector size when it already exists.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(q.dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      "file_id",
			FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to index file_id: %w", err)
		}
		return nil
	}

	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	if info.Config == nil || info.Config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	params := info.Config.Params.GetVectorsConfig().GetParams()
	if params == nil || int(params.Size) != q.dimension {
		return fmt.Errorf("collection vector size mismatch: expected %d", q.dimension)
	}
	return nil
}

func PointID(fileId uint, chunkIndex int) uint64 {
	return uint64(fileId)<<32 | uint64(uint32(chunkIndex))
}

func (q *QdrantIndex) Index(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != q.dimension {
			return fmt.Errorf("%w: chunk %d of file %d has %d, want %d", ErrInvalidVector, c.ChunkIndex, c.FileId, len(c.Embedding), q.dimension)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(PointID(c.FileId, c.ChunkIndex)),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(chunkPayload(c)),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	if len(vector) != q.dimension {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrInvalidVector, len(vector), q.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	limit := uint64(k)
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]entity.ScoredChunk, 0, len(scored))
	for _, p := range scored {
		results = append(results, entity.ScoredChunk{
			Chunk:    chunkFromPayload(p.Payload),
			Distance: 1 - float64(p.Score),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return PointID(results[i].Chunk.FileId, results[i].Chunk.ChunkIndex) < PointID(results[j].Chunk.FileId, results[j].Chunk.ChunkIndex)
	})
	return results, nil
}

func fileFilter(fileId uint) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchInt("file_id", int64(fileId))},
	}
}

func (q *QdrantIndex) DeleteByDocument(ctx context.Context, fileId uint) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelectorFilter(fileFilter(fileId)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete points of file %d: %w", fileId, err)
	}
	return nil
}

func (q *QdrantIndex) HasDocument(ctx context.Context, fileId uint) (bool, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Filter:         fileFilter(fileId),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to count points of file %d: %w", fileId, err)
	}
	return count > 0, nil
}

func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func chunkPayload(c *entity.DocumentChunk) map[string]any {
	payload := map[string]any{
		"file_id":     int64(c.FileId),
		"chunk_index": int64(c.ChunkIndex),
		"text":        c.Text,
		"filename":    c.Filename,
		"created_at":  c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if c.PageNumber != nil {
		payload["page_number"] = int64(*c.PageNumber)
	}
	if len(c.Metadata) > 0 {
		// nested values can hold slices qdrant.NewValueMap does not accept
		if raw, err := json.Marshal(c.Metadata); err == nil {
			payload["metadata"] = string(raw)
		}
	}
	return payload
}

func chunkFromPayload(payload map[string]*qdrant.Value) *entity.DocumentChunk {
	c := &entity.DocumentChunk{}
	if v, ok := payload["file_id"]; ok {
		c.FileId = uint(v.GetIntegerValue())
	}
	if v, ok := payload["chunk_index"]; ok {
		c.ChunkIndex = int(v.GetIntegerValue())
	}
	if v, ok := payload["page_number"]; ok {
		page := int(v.GetIntegerValue())
		c.PageNumber = &page
	}
	if v, ok := payload["text"]; ok {
		c.Text = v.GetStringValue()
	}
	if v, ok := payload["filename"]; ok {
		c.Filename = v.GetStringValue()
	}
	if v, ok := payload["created_at"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			c.CreatedAt = t
		}
	}
	if v, ok := payload["metadata"]; ok {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(v.GetStringValue()), &meta); err == nil {
			c.Metadata = meta
		}
	}
	return c
}

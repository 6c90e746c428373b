package entity

import "time"

type DocumentChunk struct {
	Id         uint
	FileId     uint
	ChunkIndex int
	PageNumber *int
	Text       string
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time

	// Filename is denormalised from the owning file for retrieval results.
	Filename string
}

// ScoredChunk is a retrieval hit. Distance is cosine distance, lower is closer.
type ScoredChunk struct {
	Chunk    *DocumentChunk
	Distance float64
}

package entity

import "time"

type ProcessedStatus string

const (
	ProcessedIndexed ProcessedStatus = "indexed"
	ProcessedEmpty   ProcessedStatus = "empty"
	ProcessedFailed  ProcessedStatus = "failed"
)

// ProcessedFile records that a document version went through extraction in this deployment.
// ChunkImages maps a chunk index to the base64 images attributed to it.
type ProcessedFile struct {
	FileId      uint             `json:"file_id"`
	ContentHash string           `json:"content_hash"`
	Filename    string           `json:"filename"`
	Status      ProcessedStatus  `json:"status"`
	ChunkCount  int              `json:"chunk_count"`
	ChunkImages map[int][]string `json:"chunk_images,omitempty"`
	ProcessedAt time.Time        `json:"processed_at"`
}

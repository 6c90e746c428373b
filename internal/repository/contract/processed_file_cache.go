package contract

import (
	"context"

	"docqa-be/internal/entity"
)

// ProcessedFileCache remembers which document versions were already extracted.
// Entries are keyed by document id and content hash.
type ProcessedFileCache interface {
	Get(ctx context.Context, fileId uint, contentHash string) (*entity.ProcessedFile, bool)
	// MarkProcessed stores the entry unless one already exists for the same version.
	// It reports whether this call was the writer.
	MarkProcessed(ctx context.Context, processed *entity.ProcessedFile) (bool, error)
	// Invalidate drops every version of the document.
	Invalidate(ctx context.Context, fileId uint) error
}

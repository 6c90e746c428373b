package extract

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrExtraction        = errors.New("content extraction failed")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrToolNotFound      = errors.New("poppler-utils not found: pdftotext and pdfimages are required for PDF support")
)

type Category string

const (
	CategoryTitle     Category = "Title"
	CategoryNarrative Category = "NarrativeText"
	CategoryListItem  Category = "ListItem"
	CategoryTable     Category = "Table"
	CategoryComposite Category = "CompositeElement"
)

// Element is one structural piece of a partitioned document.
type Element struct {
	Category   Category
	Text       string
	PageNumber *int
}

// TextChunk is a chunk of document text ready for embedding.
type TextChunk struct {
	Index      int
	Category   Category
	Text       string
	PageNumber *int
	Metadata   map[string]interface{}
}

// RawImage is an image pulled out of a document, base64 encoded.
type RawImage struct {
	Base64     string
	PageNumber *int
}

// Partitioner reads one document format.
type Partitioner interface {
	Partition(ctx context.Context, path string) ([]Element, error)
	ExtractImages(ctx context.Context, path string, elements []Element) ([]RawImage, error)
}

type Result struct {
	Chunks []TextChunk
	Images []RawImage
}

// Extractor turns a document file into chunks and images using one Partitioner.
type Extractor struct {
	partitioner Partitioner
	options     ChunkOptions
}

func NewExtractor(p Partitioner, options ChunkOptions) *Extractor {
	return &Extractor{partitioner: p, options: options}
}

func (e *Extractor) Process(ctx context.Context, path string) (*Result, error) {
	elements, err := e.partitioner.Partition(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, path, err)
	}

	var chunks []TextChunk
	for _, c := range ChunkByTitle(elements, e.options) {
		if c.Category == CategoryComposite {
			chunks = append(chunks, c)
		}
	}

	images, err := e.partitioner.ExtractImages(ctx, path, elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: images: %v", ErrExtraction, path, err)
	}

	return &Result{Chunks: chunks, Images: images}, nil
}

// AssociateImages attributes images to chunks by page. An image matches a chunk when
// either side has no page number or both page numbers are equal, so attribution can
// over-approximate but never drops an image that might belong.
func AssociateImages(chunks []TextChunk, images []RawImage) map[int][]RawImage {
	byChunk := make(map[int][]RawImage, len(chunks))
	for _, chunk := range chunks {
		for _, img := range images {
			if chunk.PageNumber == nil || img.PageNumber == nil || *chunk.PageNumber == *img.PageNumber {
				byChunk[chunk.Index] = append(byChunk[chunk.Index], img)
			}
		}
	}
	return byChunk
}

// dedupImages drops repeated encodings, keeping first occurrence order.
func dedupImages(images []RawImage) []RawImage {
	seen := make(map[string]struct{}, len(images))
	out := images[:0]
	for _, img := range images {
		if _, ok := seen[img.Base64]; ok {
			continue
		}
		seen[img.Base64] = struct{}{}
		out = append(out, img)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

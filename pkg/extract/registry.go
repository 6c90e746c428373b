package extract

import (
	"context"
	"fmt"
	"strings"
)

// Registry picks the extractor for a document format ("pdf", "docx").
type Registry struct {
	extractors map[string]*Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]*Extractor)}
}

// NewDefaultRegistry wires the PDF and DOCX partitioners with the default chunk limits.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("pdf", NewExtractor(NewPDFPartitioner(), DefaultChunkOptions()))
	r.Register("docx", NewExtractor(NewDOCXPartitioner(), DefaultChunkOptions()))
	return r
}

func (r *Registry) Register(format string, e *Extractor) {
	r.extractors[strings.ToLower(format)] = e
}

func (r *Registry) For(format string) (*Extractor, error) {
	e, ok := r.extractors[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return e, nil
}

func (r *Registry) Process(ctx context.Context, format, path string) (*Result, error) {
	e, err := r.For(format)
	if err != nil {
		return nil, err
	}
	return e.Process(ctx, path)
}

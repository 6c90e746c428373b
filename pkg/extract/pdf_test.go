package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	text   []byte
	images map[string][]byte
	err    error
	calls  []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return nil, m.err
	}
	if name == "pdfimages" {
		prefix := args[len(args)-1]
		for suffix, data := range m.images {
			if err := os.WriteFile(prefix+suffix, data, 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	return m.text, nil
}

func TestPDFPartitioner_Partition(t *testing.T) {
	runner := &mockRunner{text: []byte(
		"Quarterly Report\n\n   Revenue grew   strongly this quarter.\n   Costs were flat.\n\f" +
			"Outlook\n\n• first item\n• second item\n\f",
	)}
	p := NewPDFPartitionerWithRunner(runner)

	elements, err := p.Partition(context.Background(), "report.pdf")
	require.NoError(t, err)

	require.Len(t, elements, 4)
	assert.Equal(t, CategoryTitle, elements[0].Category)
	assert.Equal(t, 1, *elements[0].PageNumber)
	assert.Equal(t, CategoryNarrative, elements[1].Category)
	assert.Equal(t, "Revenue grew strongly this quarter.\nCosts were flat.", elements[1].Text)
	assert.Equal(t, CategoryTitle, elements[2].Category)
	assert.Equal(t, 2, *elements[2].PageNumber)
	assert.Equal(t, CategoryListItem, elements[3].Category)
}

func TestPDFPartitioner_ExtractImages(t *testing.T) {
	runner := &mockRunner{images: map[string][]byte{
		"-001-000.png": []byte("image-a"),
		"-002-001.png": []byte("image-b"),
		"-003-002.png": []byte("image-a"), // duplicate content
	}}
	p := NewPDFPartitionerWithRunner(runner)

	images, err := p.ExtractImages(context.Background(), "report.pdf", nil)
	require.NoError(t, err)

	require.Len(t, images, 2)
	assert.Equal(t, 1, *images[0].PageNumber)
	assert.Equal(t, 2, *images[1].PageNumber)
	assert.Equal(t, "aW1hZ2UtYQ==", images[0].Base64)
}

func TestExtractor_WrapsFailures(t *testing.T) {
	e := NewExtractor(NewPDFPartitionerWithRunner(&mockRunner{err: errors.New("pdftotext crashed")}), DefaultChunkOptions())

	_, err := e.Process(context.Background(), "broken.pdf")
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestExtractor_Deterministic(t *testing.T) {
	runner := &mockRunner{
		text:   []byte("Title\n\nBody text for the first page.\n\fSecond page body.\n\f"),
		images: map[string][]byte{"-001-000.png": []byte("png")},
	}
	e := NewExtractor(NewPDFPartitionerWithRunner(runner), DefaultChunkOptions())

	first, err := e.Process(context.Background(), filepath.Join(t.TempDir(), "doc.pdf"))
	require.NoError(t, err)
	second, err := e.Process(context.Background(), filepath.Join(t.TempDir(), "doc.pdf"))
	require.NoError(t, err)

	assert.Equal(t, len(first.Chunks), len(second.Chunks))
	assert.Equal(t, len(first.Images), len(second.Images))
	assert.Equal(t, first.Chunks[0].Text, second.Chunks[0].Text)
}

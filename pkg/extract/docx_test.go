package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Installation</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Run the </w:t></w:r><w:r><w:t>installer.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Port</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>8080</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>Host</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>localhost</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
    <w:p/>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestDOCXPartitioner_Partition(t *testing.T) {
	path := writeDocx(t, map[string]string{"word/document.xml": documentXML})

	elements, err := NewDOCXPartitioner().Partition(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, elements, 3)
	assert.Equal(t, Element{Category: CategoryTitle, Text: "Installation"}, elements[0])
	assert.Equal(t, Element{Category: CategoryNarrative, Text: "Run the installer."}, elements[1])
	assert.Equal(t, Element{Category: CategoryTable, Text: "Port | 8080\nHost | localhost"}, elements[2])
}

func TestDOCXPartitioner_MissingDocument(t *testing.T) {
	path := writeDocx(t, map[string]string{"other.xml": "<x/>"})

	_, err := NewDOCXPartitioner().Partition(context.Background(), path)
	assert.Error(t, err)
}

func TestDOCXPartitioner_ExtractImages(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml":      documentXML,
		"word/media/image1.png":  "first",
		"word/media/image2.png":  "first",
		"word/media/image3.jpeg": "second",
		"word/media/notes.txt":   "ignored",
	})

	images, err := NewDOCXPartitioner().ExtractImages(context.Background(), path, nil)
	require.NoError(t, err)

	require.Len(t, images, 2)
	for _, img := range images {
		assert.Nil(t, img.PageNumber)
	}
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.For("PDF")
	assert.NoError(t, err)

	_, err = r.Process(context.Background(), "pptx", "slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	path := writeDocx(t, map[string]string{"word/document.xml": documentXML})
	result, err := r.Process(context.Background(), "docx", path)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Contains(t, result.Chunks[0].Text, "Port | 8080")
	assert.Nil(t, result.Chunks[0].PageNumber)
}

package extract

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// PDFPartitioner reads PDFs with poppler: pdftotext for layout text, pdfimages for embedded images.
type PDFPartitioner struct {
	runner CommandRunner
}

func NewPDFPartitioner() *PDFPartitioner {
	return &PDFPartitioner{runner: execRunner{}}
}

// NewPDFPartitionerWithRunner injects the command runner, for tests.
func NewPDFPartitionerWithRunner(runner CommandRunner) *PDFPartitioner {
	return &PDFPartitioner{runner: runner}
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

func (p *PDFPartitioner) Partition(ctx context.Context, path string) ([]Element, error) {
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, err
	}

	// pdftotext ends every page with a form feed.
	pages := strings.Split(string(out), "\f")
	var elements []Element
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pageNumber := intPtr(i + 1)
		for _, block := range blankLines.Split(page, -1) {
			text := normaliseBlock(block)
			if text == "" {
				continue
			}
			elements = append(elements, Element{
				Category:   classifyBlock(text),
				Text:       text,
				PageNumber: pageNumber,
			})
		}
	}
	return elements, nil
}

// normaliseBlock collapses the layout indentation pdftotext emits.
func normaliseBlock(block string) string {
	lines := strings.Split(block, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func classifyBlock(text string) Category {
	if strings.Contains(text, "\n") {
		if isListBlock(text) {
			return CategoryListItem
		}
		return CategoryNarrative
	}
	if isListLine(text) {
		return CategoryListItem
	}
	if looksLikeTitle(text) {
		return CategoryTitle
	}
	return CategoryNarrative
}

func isListLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	for _, bullet := range []string{"•", "-", "*", "–", "◦"} {
		if strings.HasPrefix(trimmed, bullet+" ") {
			return true
		}
	}
	return false
}

func isListBlock(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if !isListLine(line) {
			return false
		}
	}
	return true
}

// looksLikeTitle treats short single lines without closing punctuation as headings.
func looksLikeTitle(line string) bool {
	if len([]rune(line)) > 80 || len(strings.Fields(line)) > 12 {
		return false
	}
	last := []rune(line)[len([]rune(line))-1]
	if strings.ContainsRune(".,;:!?", last) {
		return false
	}
	first := []rune(line)[0]
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

var imageFilePage = regexp.MustCompile(`^img-(\d+)-\d+\.png$`)

func (p *PDFPartitioner) ExtractImages(ctx context.Context, path string, _ []Element) ([]RawImage, error) {
	dir, err := os.MkdirTemp("", "docqa-pdfimages-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	// -p prefixes every output file with its page number: img-<page>-<n>.png
	if _, err := p.runner.Run(ctx, "pdfimages", "-png", "-p", path, filepath.Join(dir, "img")); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var images []RawImage
	for _, entry := range entries {
		match := imageFilePage.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var page *int
		if n, err := strconv.Atoi(match[1]); err == nil {
			page = intPtr(n)
		}
		images = append(images, RawImage{
			Base64:     base64.StdEncoding.EncodeToString(data),
			PageNumber: page,
		})
	}
	return dedupImages(images), nil
}

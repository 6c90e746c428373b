package extract

import (
	"strings"

	"docqa-be/pkg/utils"
)

// ChunkOptions mirror by-title chunking limits, in characters.
type ChunkOptions struct {
	MaxCharacters          int
	NewAfterNChars         int
	CombineTextUnderNChars int
}

func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxCharacters:          10000,
		NewAfterNChars:         6000,
		CombineTextUnderNChars: 2000,
	}
}

const elementSeparator = "\n\n"

// ChunkByTitle groups elements into sections that start at each Title, merges sections
// shorter than CombineTextUnderNChars into their predecessor, then packs each section
// into chunks. A chunk closes before it would pass NewAfterNChars; no chunk exceeds
// MaxCharacters, oversized elements are split.
func ChunkByTitle(elements []Element, opts ChunkOptions) []TextChunk {
	if opts.MaxCharacters <= 0 {
		opts = DefaultChunkOptions()
	}
	if opts.NewAfterNChars <= 0 || opts.NewAfterNChars > opts.MaxCharacters {
		opts.NewAfterNChars = opts.MaxCharacters
	}

	var sections [][]Element
	for _, el := range elements {
		if strings.TrimSpace(el.Text) == "" {
			continue
		}
		if el.Category == CategoryTitle || len(sections) == 0 {
			sections = append(sections, []Element{el})
			continue
		}
		last := len(sections) - 1
		sections[last] = append(sections[last], el)
	}

	var merged [][]Element
	for _, sec := range sections {
		if n := len(merged); n > 0 {
			prevLen := sectionLen(merged[n-1])
			if prevLen < opts.CombineTextUnderNChars && prevLen+sectionLen(sec) <= opts.NewAfterNChars {
				merged[n-1] = append(merged[n-1], sec...)
				continue
			}
		}
		merged = append(merged, sec)
	}

	var chunks []TextChunk
	for _, sec := range merged {
		chunks = append(chunks, packSection(sec, opts, len(chunks))...)
	}
	return chunks
}

func sectionLen(sec []Element) int {
	n := 0
	for i, el := range sec {
		if i > 0 {
			n += len(elementSeparator)
		}
		n += utils.RuneLen(el.Text)
	}
	return n
}

type chunkBuilder struct {
	parts    []string
	length   int
	page     *int
	pages    []int
	elements int
	title    string
}

func (b *chunkBuilder) add(text string, page *int) {
	if len(b.parts) > 0 {
		b.length += len(elementSeparator)
	} else {
		b.page = page
	}
	if page != nil && (len(b.pages) == 0 || b.pages[len(b.pages)-1] != *page) {
		b.pages = append(b.pages, *page)
	}
	b.parts = append(b.parts, text)
	b.length += utils.RuneLen(text)
	b.elements++
}

func (b *chunkBuilder) fits(text string, limit int) bool {
	if len(b.parts) == 0 {
		return true
	}
	return b.length+len(elementSeparator)+utils.RuneLen(text) <= limit
}

func (b *chunkBuilder) build(index int) TextChunk {
	metadata := map[string]interface{}{
		"element_count": b.elements,
	}
	if len(b.pages) > 0 {
		metadata["page_numbers"] = append([]int(nil), b.pages...)
	}
	if b.title != "" {
		metadata["section_title"] = b.title
	}
	return TextChunk{
		Index:      index,
		Category:   CategoryComposite,
		Text:       strings.Join(b.parts, elementSeparator),
		PageNumber: b.page,
		Metadata:   metadata,
	}
}

func packSection(sec []Element, opts ChunkOptions, offset int) []TextChunk {
	var chunks []TextChunk
	var title string
	if len(sec) > 0 && sec[0].Category == CategoryTitle {
		title = strings.TrimSpace(sec[0].Text)
	}

	b := &chunkBuilder{title: title}
	flush := func() {
		if len(b.parts) == 0 {
			return
		}
		chunks = append(chunks, b.build(offset+len(chunks)))
		b = &chunkBuilder{title: title}
	}

	for _, el := range sec {
		text := strings.TrimSpace(el.Text)
		for _, piece := range utils.SplitText(text, opts.MaxCharacters, 0) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			if !b.fits(piece, opts.NewAfterNChars) {
				flush()
			}
			b.add(piece, el.PageNumber)
		}
	}
	flush()
	return chunks
}

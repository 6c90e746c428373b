package extract

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

var errNoDocumentXML = errors.New("word/document.xml not found")

// DOCXPartitioner reads Office Open XML documents directly from the zip container.
// Word files carry no reliable page layout, so elements and images have no page number.
type DOCXPartitioner struct{}

func NewDOCXPartitioner() *DOCXPartitioner {
	return &DOCXPartitioner{}
}

func (p *DOCXPartitioner) Partition(ctx context.Context, filePath string) ([]Element, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return nil, errNoDocumentXML
}

type paragraphState struct {
	style string
	text  strings.Builder
}

// parseDocumentXML walks word/document.xml as a token stream. Paragraphs become elements;
// heading styles become titles; each table is folded into one element, cells joined by " | ".
func parseDocumentXML(r io.Reader) ([]Element, error) {
	decoder := xml.NewDecoder(r)

	var (
		elements   []Element
		para       *paragraphState
		inText     bool
		tableDepth int
		rows       []string
		cells      []string
		cell       strings.Builder
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					rows = nil
				}
			case "tr":
				if tableDepth == 1 {
					cells = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				para = &paragraphState{}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "t":
				inText = true
			case "tab":
				if para != nil {
					para.text.WriteString("\t")
				}
			case "br", "cr":
				if para != nil {
					para.text.WriteString("\n")
				}
			}

		case xml.CharData:
			if inText && para != nil {
				para.text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para == nil {
					continue
				}
				text := strings.TrimSpace(para.text.String())
				if tableDepth > 0 {
					if text != "" {
						if cell.Len() > 0 {
							cell.WriteString(" ")
						}
						cell.WriteString(text)
					}
				} else if text != "" {
					elements = append(elements, Element{Category: paragraphCategory(para.style), Text: text})
				}
				para = nil
			case "tc":
				if tableDepth == 1 {
					cells = append(cells, strings.TrimSpace(cell.String()))
				}
			case "tr":
				if tableDepth == 1 && len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(rows) > 0 {
					elements = append(elements, Element{Category: CategoryTable, Text: strings.Join(rows, "\n")})
				}
			}
		}
	}
	return elements, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func paragraphCategory(style string) Category {
	s := strings.ToLower(style)
	switch {
	case s == "title" || strings.HasPrefix(s, "heading"):
		return CategoryTitle
	case strings.HasPrefix(s, "listparagraph") || strings.HasPrefix(s, "listbullet") || strings.HasPrefix(s, "listnumber"):
		return CategoryListItem
	default:
		return CategoryNarrative
	}
}

// ExtractImages returns every picture stored under word/media in archive order.
func (p *DOCXPartitioner) ExtractImages(ctx context.Context, filePath string, _ []Element) ([]RawImage, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	files := make([]*zip.File, 0)
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "word/media/") && isImageName(file.Name) {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var images []RawImage
	for _, file := range files {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, RawImage{Base64: base64.StdEncoding.EncodeToString(data)})
	}
	return dedupImages(images), nil
}

func isImageName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

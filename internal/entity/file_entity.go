package entity

import "time"

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

// SupportedFileTypes are the document formats the extractor can read.
var SupportedFileTypes = []FileType{FileTypePDF, FileTypeDOCX}

func (t FileType) IsSupported() bool {
	for _, s := range SupportedFileTypes {
		if s == t {
			return true
		}
	}
	return false
}

type File struct {
	Id               uint
	Filename         string
	OriginalFilename string
	FilePath         string
	FileSize         int64
	FileType         FileType
	ContentHash      string
	UserId           uint
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

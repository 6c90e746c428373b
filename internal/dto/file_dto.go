package dto

import "time"

type FileResponse struct {
	Id               uint      `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	FileType         string    `json:"file_type"`
	ContentHash      string    `json:"content_hash"`
	CreatedAt        time.Time `json:"created_at"`
}

type UploadFileResponse struct {
	File      FileResponse `json:"file"`
	Duplicate bool         `json:"duplicate"`
}

// PublishDocumentUploadedMessage is the in-process message that asks the indexer to pre-index a document.
type PublishDocumentUploadedMessage struct {
	FileId uint `json:"file_id"`
}

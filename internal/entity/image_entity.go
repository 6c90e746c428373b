package entity

import "time"

type Image struct {
	Id          uint
	ChunkId     *uint
	FileId      uint
	ChunkIndex  int
	PageNumber  *int
	ImageIndex  int
	ImageData   string // base64 encoded PNG
	Description *string
	CreatedAt   time.Time
}

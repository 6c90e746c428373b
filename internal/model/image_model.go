package model

import "time"

type Image struct {
	Id          uint      `gorm:"primaryKey;autoIncrement"`
	ChunkId     *uint     `gorm:"index"`
	FileId      uint      `gorm:"not null;index:idx_images_file_chunk"`
	ChunkIndex  int       `gorm:"not null;default:0;index:idx_images_file_chunk"`
	PageNumber  *int      `gorm:"type:integer"`
	ImageIndex  int       `gorm:"not null;default:0"`
	ImageData   string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Chunk *DocumentChunk `gorm:"foreignKey:ChunkId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	File  *File          `gorm:"foreignKey:FileId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Image) TableName() string {
	return "images"
}

package model

import "time"

type File struct {
	Id               uint      `gorm:"primaryKey;autoIncrement"`
	Filename         string    `gorm:"type:varchar(255);not null"`
	OriginalFilename string    `gorm:"type:varchar(255);not null"`
	FilePath         string    `gorm:"type:varchar(500);not null"`
	FileSize         int64     `gorm:"not null"`
	FileType         string    `gorm:"type:varchar(50);not null"`
	ContentHash      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_files_user_hash"`
	UserId           uint      `gorm:"not null;index;uniqueIndex:idx_files_user_hash"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (File) TableName() string {
	return "files"
}

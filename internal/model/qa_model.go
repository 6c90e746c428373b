package model

import (
	"time"

	"gorm.io/datatypes"
)

type Question struct {
	Id           uint           `gorm:"primaryKey;autoIncrement"`
	QuestionText string         `gorm:"type:text;not null"`
	UserId       uint           `gorm:"not null;index"`
	SessionId    *string        `gorm:"type:varchar(255);index"`
	ContextFiles datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`

	Answers []Answer `gorm:"foreignKey:QuestionId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	Id               uint      `gorm:"primaryKey;autoIncrement"`
	QuestionId       uint      `gorm:"not null;uniqueIndex"`
	AnswerText       string    `gorm:"type:text;not null"`
	ConfidenceScore  float64   `gorm:"not null;default:0"`
	SourcesUsed      *string   `gorm:"type:text"`
	ImagesUsed       *string   `gorm:"type:text"`
	ProcessingTimeMs *int64    `gorm:"type:bigint"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (Answer) TableName() string {
	return "answers"
}

package specification

import "gorm.io/gorm"

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("questions.session_id = ?", s.SessionID)
}

// Answered keeps questions that have an answer and preloads it.
type Answered struct{}

func (s Answered) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)").
		Preload("Answers")
}

// Unanswered keeps questions with no answer row.
type Unanswered struct{}

func (s Unanswered) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)")
}

type ByChunkIndex struct {
	ChunkIndex int
}

func (s ByChunkIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_index = ?", s.ChunkIndex)
}

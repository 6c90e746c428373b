package dto

import "time"

type QuestionRequest struct {
	Question  string  `json:"question" validate:"required,min=1,max=1000"`
	SessionId *string `json:"session_id,omitempty" validate:"omitempty,max=255"`
}

type SourceReference struct {
	FileId         uint    `json:"file_id"`
	Filename       string  `json:"filename"`
	PageNumber     *int    `json:"page_number"`
	ChunkIndex     int     `json:"chunk_index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type ImageReference struct {
	ImagePath   string  `json:"image_path"`
	Description *string `json:"description"`
	PageNumber  *int    `json:"page_number"`
	FileId      uint    `json:"file_id"`
}

type AnswerResponse struct {
	Answer          string            `json:"answer"`
	Sources         []SourceReference `json:"sources"`
	Images          []ImageReference  `json:"images"`
	ConfidenceScore float64           `json:"confidence_score"`
	QuestionId      uint              `json:"question_id"`
}

type QuestionDTO struct {
	Id           uint      `json:"id"`
	QuestionText string    `json:"question_text"`
	UserId       uint      `json:"user_id"`
	SessionId    *string   `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type AnswerDTO struct {
	Id               uint              `json:"id"`
	AnswerText       string            `json:"answer_text"`
	ConfidenceScore  float64           `json:"confidence_score"`
	Sources          []SourceReference `json:"sources"`
	Images           []ImageReference  `json:"images"`
	ProcessingTimeMs *int64            `json:"processing_time_ms"`
	CreatedAt        time.Time         `json:"created_at"`
}

type QAPairResponse struct {
	Question QuestionDTO `json:"question"`
	Answer   AnswerDTO   `json:"answer"`
}

type UserStatsResponse struct {
	TotalQuestions int64   `json:"total_questions"`
	TotalAnswers   int64   `json:"total_answers"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

type SweepResult struct {
	Reconciled int `json:"reconciled"`
}

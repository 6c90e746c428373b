package entity

import "time"

type Question struct {
	Id           uint
	QuestionText string
	UserId       uint
	SessionId    *string
	ContextFiles *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type Answer struct {
	Id               uint
	QuestionId       uint
	AnswerText       string
	ConfidenceScore  float64
	SourcesUsed      *string // JSON array, nil when empty
	ImagesUsed       *string // JSON array, nil when empty
	ProcessingTimeMs *int64
	CreatedAt        time.Time
}

// QAPair joins a question with its answer. Answer is nil when the question is still unanswered.
type QAPair struct {
	Question *Question
	Answer   *Answer
}

type QuestionStats struct {
	TotalQuestions int64
	TotalAnswers   int64
	AvgConfidence  float64
}

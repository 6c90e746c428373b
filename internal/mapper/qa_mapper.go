package mapper

import (
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"gorm.io/datatypes"
)

type QAMapper struct{}

func NewQAMapper() *QAMapper {
	return &QAMapper{}
}

func (m *QAMapper) QuestionToEntity(q *model.Question) *entity.Question {
	if q == nil {
		return nil
	}

	var updatedAt *time.Time
	if !q.UpdatedAt.IsZero() {
		t := q.UpdatedAt
		updatedAt = &t
	}

	var contextFiles *string
	if len(q.ContextFiles) > 0 {
		s := string(q.ContextFiles)
		contextFiles = &s
	}

	return &entity.Question{
		Id:           q.Id,
		QuestionText: q.QuestionText,
		UserId:       q.UserId,
		SessionId:    q.SessionId,
		ContextFiles: contextFiles,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *QAMapper) QuestionToModel(q *entity.Question) *model.Question {
	if q == nil {
		return nil
	}

	var updatedAt time.Time
	if q.UpdatedAt != nil {
		updatedAt = *q.UpdatedAt
	}

	var contextFiles datatypes.JSON
	if q.ContextFiles != nil {
		contextFiles = datatypes.JSON(*q.ContextFiles)
	}

	return &model.Question{
		Id:           q.Id,
		QuestionText: q.QuestionText,
		UserId:       q.UserId,
		SessionId:    q.SessionId,
		ContextFiles: contextFiles,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *QAMapper) AnswerToEntity(a *model.Answer) *entity.Answer {
	if a == nil {
		return nil
	}
	return &entity.Answer{
		Id:               a.Id,
		QuestionId:       a.QuestionId,
		AnswerText:       a.AnswerText,
		ConfidenceScore:  a.ConfidenceScore,
		SourcesUsed:      a.SourcesUsed,
		ImagesUsed:       a.ImagesUsed,
		ProcessingTimeMs: a.ProcessingTimeMs,
		CreatedAt:        a.CreatedAt,
	}
}

func (m *QAMapper) AnswerToModel(a *entity.Answer) *model.Answer {
	if a == nil {
		return nil
	}
	return &model.Answer{
		Id:               a.Id,
		QuestionId:       a.QuestionId,
		AnswerText:       a.AnswerText,
		ConfidenceScore:  a.ConfidenceScore,
		SourcesUsed:      a.SourcesUsed,
		ImagesUsed:       a.ImagesUsed,
		ProcessingTimeMs: a.ProcessingTimeMs,
		CreatedAt:        a.CreatedAt,
	}
}

// PairToEntity maps a question and its preloaded answers. Only the first answer is kept.
func (m *QAMapper) PairToEntity(q *model.Question) *entity.QAPair {
	pair := &entity.QAPair{Question: m.QuestionToEntity(q)}
	if len(q.Answers) > 0 {
		pair.Answer = m.AnswerToEntity(&q.Answers[0])
	}
	return pair
}

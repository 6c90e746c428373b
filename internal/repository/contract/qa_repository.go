package contract

import (
	"context"
	"time"

	"docqa-be/internal/entity"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	FindById(ctx context.Context, id uint) (*entity.Question, error)
	// FindPairsByUser returns answered questions, newest first.
	FindPairsByUser(ctx context.Context, userId uint, limit int) ([]*entity.QAPair, error)
	// FindPairsBySession returns answered questions of a session, oldest first.
	FindPairsBySession(ctx context.Context, sessionId string) ([]*entity.QAPair, error)
	FindUnanswered(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.Question, error)
	Delete(ctx context.Context, id uint) error
	StatsByUser(ctx context.Context, userId uint) (*entity.QuestionStats, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *entity.Answer) error
	FindByQuestionId(ctx context.Context, questionId uint) (*entity.Answer, error)
}

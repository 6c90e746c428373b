package implementation

import (
	"context"
	"errors"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QuestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewQuestionRepository(db *gorm.DB) contract.QuestionRepository {
	return &QuestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *entity.Question) error {
	m := r.mapper.QuestionToModel(question)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*question = *r.mapper.QuestionToEntity(m)
	return nil
}

func (r *QuestionRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.Question, error) {
	var m model.Question
	if err := r.db.WithContext(ctx).Scopes(specification.ByID{ID: id}.Apply).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.QuestionToEntity(&m), nil
}

func (r *QuestionRepositoryImpl) findPairs(ctx context.Context, specs ...specification.Specification) ([]*entity.QAPair, error) {
	var models []*model.Question
	specs = append([]specification.Specification{specification.Answered{}}, specs...)
	if err := specification.Apply(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	pairs := make([]*entity.QAPair, len(models))
	for i, m := range models {
		pairs[i] = r.mapper.PairToEntity(m)
	}
	return pairs, nil
}

func (r *QuestionRepositoryImpl) FindPairsByUser(ctx context.Context, userId uint, limit int) ([]*entity.QAPair, error) {
	return r.findPairs(ctx,
		specification.ByUserID{UserID: userId, Table: "questions"},
		specification.OrderBy{Field: "questions.created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (r *QuestionRepositoryImpl) FindPairsBySession(ctx context.Context, sessionId string) ([]*entity.QAPair, error) {
	return r.findPairs(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "questions.created_at"},
	)
}

func (r *QuestionRepositoryImpl) FindUnanswered(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.Question, error) {
	var models []*model.Question
	err := specification.Apply(r.db.WithContext(ctx),
		specification.Unanswered{},
		specification.CreatedBefore{At: createdBefore, Table: "questions"},
		specification.OrderBy{Field: "questions.id"},
		specification.Pagination{Limit: limit},
	).Find(&models).Error
	if err != nil {
		return nil, err
	}
	questions := make([]*entity.Question, len(models))
	for i, m := range models {
		questions[i] = r.mapper.QuestionToEntity(m)
	}
	return questions, nil
}

// Delete removes the question; its answer goes with it through the cascading foreign key.
func (r *QuestionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Question{}, id).Error
}

func (r *QuestionRepositoryImpl) StatsByUser(ctx context.Context, userId uint) (*entity.QuestionStats, error) {
	stats := &entity.QuestionStats{}

	if err := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("user_id = ?", userId).
		Count(&stats.TotalQuestions).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Total int64
		Avg   *float64
	}
	err := r.db.WithContext(ctx).Model(&model.Answer{}).
		Select("COUNT(answers.id) AS total, AVG(answers.confidence_score) AS avg").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.user_id = ?", userId).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats.TotalAnswers = agg.Total
	if agg.Avg != nil {
		stats.AvgConfidence = *agg.Avg
	}
	return stats, nil
}

type AnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewAnswerRepository(db *gorm.DB) contract.AnswerRepository {
	return &AnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *AnswerRepositoryImpl) Create(ctx context.Context, answer *entity.Answer) error {
	m := r.mapper.AnswerToModel(answer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*answer = *r.mapper.AnswerToEntity(m)
	return nil
}

func (r *AnswerRepositoryImpl) FindByQuestionId(ctx context.Context, questionId uint) (*entity.Answer, error) {
	var m model.Answer
	if err := r.db.WithContext(ctx).Where("question_id = ?", questionId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AnswerToEntity(&m), nil
}

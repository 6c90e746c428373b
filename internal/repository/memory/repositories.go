package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"docqa-be/internal/entity"
)

type fileRepository struct{ s *Store }

func (r *fileRepository) Create(ctx context.Context, file *entity.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	file.Id = r.s.id()
	file.CreatedAt = r.s.now()
	cp := *file
	r.s.files[file.Id] = &cp
	return nil
}

func (r *fileRepository) FindById(ctx context.Context, id uint) (*entity.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if f, ok := r.s.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (r *fileRepository) FindByUserAndHash(ctx context.Context, userId uint, contentHash string) (*entity.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.files) {
		f := r.s.files[id]
		if f.UserId == userId && f.ContentHash == contentHash {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fileRepository) FindAllByTypes(ctx context.Context, types []entity.FileType) ([]*entity.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	allowed := make(map[entity.FileType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	var files []*entity.File
	for _, id := range sortedKeys(r.s.files) {
		if f := r.s.files[id]; allowed[f.FileType] {
			cp := *f
			files = append(files, &cp)
		}
	}
	return files, nil
}

func (r *fileRepository) FindAllByUser(ctx context.Context, userId uint) ([]*entity.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var files []*entity.File
	keys := sortedKeys(r.s.files)
	for i := len(keys) - 1; i >= 0; i-- {
		if f := r.s.files[keys[i]]; f.UserId == userId {
			cp := *f
			files = append(files, &cp)
		}
	}
	return files, nil
}

// Delete cascades to chunks and images like the foreign keys do in postgres.
func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.files, id)
	for cid, c := range r.s.chunks {
		if c.FileId == id {
			delete(r.s.chunks, cid)
		}
	}
	for iid, img := range r.s.images {
		if img.FileId == id {
			delete(r.s.images, iid)
		}
	}
	return nil
}

type chunkRepository struct{ s *Store }

func (r *chunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range chunks {
		c.Id = r.s.id()
		c.CreatedAt = r.s.now()
		cp := *c
		r.s.chunks[c.Id] = &cp
	}
	return nil
}

// SearchByDistance is not served by the memory store; the memory vector index owns similarity search.
func (r *chunkRepository) SearchByDistance(ctx context.Context, embedding []float32, limit int) ([]entity.ScoredChunk, error) {
	return nil, nil
}

func (r *chunkRepository) ExistsByFileId(ctx context.Context, fileId uint) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.chunks {
		if c.FileId == fileId {
			return true, nil
		}
	}
	return false, nil
}

func (r *chunkRepository) DeleteByFileId(ctx context.Context, fileId uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.chunks {
		if c.FileId == fileId {
			delete(r.s.chunks, id)
		}
	}
	return nil
}

func (r *chunkRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.chunks)), nil
}

type imageRepository struct{ s *Store }

func (r *imageRepository) CreateBulk(ctx context.Context, images []*entity.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, img := range images {
		img.Id = r.s.id()
		img.CreatedAt = r.s.now()
		cp := *img
		r.s.images[img.Id] = &cp
	}
	return nil
}

func (r *imageRepository) FindByFileAndChunk(ctx context.Context, fileId uint, chunkIndex int) ([]*entity.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var images []*entity.Image
	for _, id := range sortedKeys(r.s.images) {
		img := r.s.images[id]
		if img.FileId == fileId && img.ChunkIndex == chunkIndex {
			cp := *img
			images = append(images, &cp)
		}
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].ImageIndex < images[j].ImageIndex })
	return images, nil
}

func (r *imageRepository) DeleteByFileId(ctx context.Context, fileId uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, img := range r.s.images {
		if img.FileId == fileId {
			delete(r.s.images, id)
		}
	}
	return nil
}

type questionRepository struct{ s *Store }

func (r *questionRepository) Create(ctx context.Context, question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	question.Id = r.s.id()
	question.CreatedAt = r.s.now()
	cp := *question
	r.s.questions[question.Id] = &cp
	return nil
}

func (r *questionRepository) FindById(ctx context.Context, id uint) (*entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if q, ok := r.s.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

// pairs must be called with the read lock held.
func (r *questionRepository) pairs(match func(q *entity.Question) bool) []*entity.QAPair {
	answerByQuestion := make(map[uint]*entity.Answer, len(r.s.answers))
	for _, a := range r.s.answers {
		answerByQuestion[a.QuestionId] = a
	}

	var pairs []*entity.QAPair
	for _, id := range sortedKeys(r.s.questions) {
		q := r.s.questions[id]
		a, ok := answerByQuestion[id]
		if !ok || !match(q) {
			continue
		}
		qc, ac := *q, *a
		pairs = append(pairs, &entity.QAPair{Question: &qc, Answer: &ac})
	}
	return pairs
}

func (r *questionRepository) FindPairsByUser(ctx context.Context, userId uint, limit int) ([]*entity.QAPair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pairs := r.pairs(func(q *entity.Question) bool { return q.UserId == userId })
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Question.CreatedAt.After(pairs[j].Question.CreatedAt)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}

func (r *questionRepository) FindPairsBySession(ctx context.Context, sessionId string) ([]*entity.QAPair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pairs := r.pairs(func(q *entity.Question) bool {
		return q.SessionId != nil && *q.SessionId == sessionId
	})
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Question.CreatedAt.Before(pairs[j].Question.CreatedAt)
	})
	return pairs, nil
}

func (r *questionRepository) FindUnanswered(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	answered := make(map[uint]bool, len(r.s.answers))
	for _, a := range r.s.answers {
		answered[a.QuestionId] = true
	}
	var questions []*entity.Question
	for _, id := range sortedKeys(r.s.questions) {
		q := r.s.questions[id]
		if answered[id] || !q.CreatedAt.Before(createdBefore) {
			continue
		}
		cp := *q
		questions = append(questions, &cp)
		if limit > 0 && len(questions) == limit {
			break
		}
	}
	return questions, nil
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.questions, id)
	for aid, a := range r.s.answers {
		if a.QuestionId == id {
			delete(r.s.answers, aid)
		}
	}
	return nil
}

func (r *questionRepository) StatsByUser(ctx context.Context, userId uint) (*entity.QuestionStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stats := &entity.QuestionStats{}
	owned := make(map[uint]bool)
	for id, q := range r.s.questions {
		if q.UserId == userId {
			owned[id] = true
			stats.TotalQuestions++
		}
	}
	var sum float64
	for _, a := range r.s.answers {
		if owned[a.QuestionId] {
			stats.TotalAnswers++
			sum += a.ConfidenceScore
		}
	}
	if stats.TotalAnswers > 0 {
		stats.AvgConfidence = sum / float64(stats.TotalAnswers)
	}
	return stats, nil
}

type answerRepository struct{ s *Store }

func (r *answerRepository) Create(ctx context.Context, answer *entity.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.answers {
		if a.QuestionId == answer.QuestionId {
			return fmt.Errorf("question %d already has an answer", answer.QuestionId)
		}
	}
	answer.Id = r.s.id()
	answer.CreatedAt = r.s.now()
	cp := *answer
	r.s.answers[answer.Id] = &cp
	return nil
}

func (r *answerRepository) FindByQuestionId(ctx context.Context, questionId uint) (*entity.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.answers) {
		if a := r.s.answers[id]; a.QuestionId == questionId {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/unitofwork"
)

// Store keeps every repository's rows in process memory. It backs the unit of work when no
// database is configured and stands in for postgres in service tests.
// Transactions are not isolated: Begin/Commit/Rollback only track state.
type Store struct {
	mu sync.RWMutex

	nextId    uint
	files     map[uint]*entity.File
	chunks    map[uint]*entity.DocumentChunk
	images    map[uint]*entity.Image
	questions map[uint]*entity.Question
	answers   map[uint]*entity.Answer

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		files:     make(map[uint]*entity.File),
		chunks:    make(map[uint]*entity.DocumentChunk),
		images:    make(map[uint]*entity.Image),
		questions: make(map[uint]*entity.Question),
		answers:   make(map[uint]*entity.Answer),
		now:       time.Now,
	}
}

// SetClock overrides the creation timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id() uint {
	s.nextId++
	return s.nextId
}

// NewRepositoryFactory returns a factory whose units of work all share this store.
func (s *Store) NewRepositoryFactory() unitofwork.RepositoryFactory {
	return &repositoryFactory{store: s}
}

type repositoryFactory struct {
	store *Store
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

type unitOfWork struct {
	store  *Store
	active bool
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	u.active = true
	return nil
}

func (u *unitOfWork) Commit() error {
	u.active = false
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.active = false
	return nil
}

func (u *unitOfWork) FileRepository() contract.FileRepository {
	return &fileRepository{u.store}
}

func (u *unitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &chunkRepository{u.store}
}

func (u *unitOfWork) ImageRepository() contract.ImageRepository {
	return &imageRepository{u.store}
}

func (u *unitOfWork) QuestionRepository() contract.QuestionRepository {
	return &questionRepository{u.store}
}

func (u *unitOfWork) AnswerRepository() contract.AnswerRepository {
	return &answerRepository{u.store}
}

func sortedKeys[T any](m map[uint]T) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

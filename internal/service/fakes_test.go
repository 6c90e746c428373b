package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/memory"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/events"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/vectorindex"

	"github.com/stretchr/testify/mock"
)

const testDim = 3

type fakeExtractor struct {
	mu      sync.Mutex
	calls   int
	results map[string]*extract.Result
	errs    map[string]error
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{results: map[string]*extract.Result{}, errs: map[string]error{}}
}

func (f *fakeExtractor) Process(ctx context.Context, format, path string) (*extract.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	if r, ok := f.results[path]; ok {
		return r, nil
	}
	return &extract.Result{}, nil
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeEmbedder returns fixed vectors per text and a far-away default for anything else.
type fakeEmbedder struct {
	vectors  map[string][]float32
	batchErr error
	embedErr error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{}}
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{0, 0, 1}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return testDim }

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	args := m.Called(ctx, question, contextText)
	return args.String(0), args.Error(1)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, map[string]string, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, map[string]string{"provider": "openai", "filename": filename}, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type ragFixture struct {
	store      *memory.Store
	extractor  *fakeExtractor
	embedder   *fakeEmbedder
	index      *vectorindex.MemoryIndex
	generator  *mockGenerator
	transcribe *fakeTranscriber
	events     *recordingEvents
	indexer    IIndexerService
	svc        IRagService
}

func newRagFixture() *ragFixture {
	f := &ragFixture{
		store:      memory.NewStore(),
		extractor:  newFakeExtractor(),
		embedder:   newFakeEmbedder(),
		index:      vectorindex.NewMemoryIndex(testDim),
		generator:  &mockGenerator{},
		transcribe: &fakeTranscriber{},
		events:     &recordingEvents{},
	}
	log := logger.NewNopLogger()
	uowFactory := f.store.NewRepositoryFactory()
	f.indexer = NewIndexerService(uowFactory, f.extractor, f.embedder, f.index, memory.NewProcessedFileCache(), f.events, log)
	f.svc = NewRagService(uowFactory, f.indexer, f.embedder, f.index, f.generator, f.transcribe, f.events, log)
	return f
}

func (f *ragFixture) addFile(name string, userId uint) *entity.File {
	file := &entity.File{
		Filename:         name,
		OriginalFilename: name,
		FilePath:         "/docs/" + name,
		FileType:         entity.FileTypePDF,
		ContentHash:      "hash-" + name,
		UserId:           userId,
	}
	if err := f.store.NewRepositoryFactory().NewUnitOfWork(context.Background()).FileRepository().Create(context.Background(), file); err != nil {
		panic(err)
	}
	return file
}

func page(n int) *int { return &n }

func textChunk(index, pageNo int, text string) extract.TextChunk {
	return extract.TextChunk{Index: index, Category: extract.CategoryComposite, Text: text, PageNumber: page(pageNo)}
}

var errBoom = errors.New("boom")

// failingQuestionFactory wraps a factory so that recording a question always fails.
type failingQuestionFactory struct {
	unitofwork.RepositoryFactory
}

func (f failingQuestionFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return failingQuestionUnitOfWork{f.RepositoryFactory.NewUnitOfWork(ctx)}
}

type failingQuestionUnitOfWork struct {
	unitofwork.UnitOfWork
}

func (u failingQuestionUnitOfWork) QuestionRepository() contract.QuestionRepository {
	return failingQuestions{u.UnitOfWork.QuestionRepository()}
}

type failingQuestions struct {
	contract.QuestionRepository
}

func (failingQuestions) Create(ctx context.Context, question *entity.Question) error {
	return errBoom
}

func newCache() contract.ProcessedFileCache { return memory.NewProcessedFileCache() }

func nopLog() logger.ILogger { return logger.NewNopLogger() }

func uintString(v uint) string { return strconv.FormatUint(uint64(v), 10) }

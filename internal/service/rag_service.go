package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/internal/tracer"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/transcribe"
	"docqa-be/pkg/vectorindex"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const ragModule = "RAG"

const (
	NoDocumentsAnswer   = "No documents available for processing."
	NoRelevantAnswer    = "No relevant information found in the documents."
	errorAnswerPrefix   = "An error occurred while processing your question: "
	audioFailurePrefix  = "Audio processing failed: "
	audioFallbackPrefix = "Failed to process audio question: "

	retrievalK          = 5
	sourceLimit         = 3
	sourceMaxDistance   = 0.6
	imageMinRelevance   = 0.4
	imageLimit          = 5
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type ragState string

const (
	stateStarted          ragState = "STARTED"
	stateQuestionRecorded ragState = "QUESTION_RECORDED"
	stateDocumentsEnsured ragState = "DOCUMENTS_ENSURED"
	stateRetrieved        ragState = "RETRIEVED"
	stateAnswered         ragState = "ANSWERED"
	statePersisted        ragState = "PERSISTED"
	stateErrored          ragState = "ERRORED"
)

// AnswerGenerator is satisfied by *llm.AnswerGenerator.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

type IRagService interface {
	ProcessQuestion(ctx context.Context, userId uint, req *dto.QuestionRequest) (*dto.AnswerResponse, error)
	ProcessAudioQuestion(ctx context.Context, userId uint, audio []byte, filename string, sessionId *string) (*dto.AnswerResponse, error)
	GetQuestionHistory(ctx context.Context, userId uint, limit int) ([]*dto.QAPairResponse, error)
	GetSessionHistory(ctx context.Context, userId uint, sessionId string) ([]*dto.QAPairResponse, error)
	DeleteQuestion(ctx context.Context, userId uint, questionId uint) error
	GetUserStats(ctx context.Context, userId uint) (*dto.UserStatsResponse, error)
}

type ragService struct {
	uowFactory  unitofwork.RepositoryFactory
	indexer     IIndexerService
	embedder    embedding.EmbeddingProvider
	index       vectorindex.Index
	generator   AnswerGenerator
	transcriber transcribe.AudioTranscriber
	events      IEventPublisher
	log         logger.ILogger
	tracer      trace.Tracer
	now         func() time.Time
}

func NewRagService(
	uowFactory unitofwork.RepositoryFactory,
	indexer IIndexerService,
	embedder embedding.EmbeddingProvider,
	index vectorindex.Index,
	generator AnswerGenerator,
	transcriber transcribe.AudioTranscriber,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IRagService {
	return &ragService{
		uowFactory:  uowFactory,
		indexer:     indexer,
		embedder:    embedder,
		index:       index,
		generator:   generator,
		transcriber: transcriber,
		events:      eventPublisher,
		log:         log,
		tracer:      tracer.Tracer("docqa-be/internal/service/rag"),
		now:         time.Now,
	}
}

// ragResult is the answer before it is persisted.
type ragResult struct {
	answer     string
	sources    []dto.SourceReference
	images     []dto.ImageReference
	confidence float64
}

func errorResult(message string) *ragResult {
	return &ragResult{
		answer:  errorAnswerPrefix + message,
		sources: []dto.SourceReference{},
		images:  []dto.ImageReference{},
	}
}

func cannedResult(answer string) *ragResult {
	return &ragResult{
		answer:  answer,
		sources: []dto.SourceReference{},
		images:  []dto.ImageReference{},
	}
}

func (s *ragService) transition(questionId uint, state ragState, details map[string]interface{}) {
	fields := map[string]interface{}{"question_id": questionId, "state": state}
	for k, v := range details {
		fields[k] = v
	}
	if state == stateErrored {
		s.log.Error(ragModule, "Question processing failed", fields)
		return
	}
	s.log.Info(ragModule, "Question state changed", fields)
}

func (s *ragService) ProcessQuestion(ctx context.Context, userId uint, req *dto.QuestionRequest) (*dto.AnswerResponse, error) {
	ctx, span := s.tracer.Start(ctx, "rag.ProcessQuestion", trace.WithAttributes(attribute.Int64("user_id", int64(userId))))
	defer span.End()

	started := s.now()
	question := &entity.Question{
		QuestionText: req.Question,
		UserId:       userId,
		SessionId:    req.SessionId,
		CreatedAt:    started,
	}
	return s.run(ctx, question, started)
}

func (s *ragService) ProcessAudioQuestion(ctx context.Context, userId uint, audio []byte, filename string, sessionId *string) (*dto.AnswerResponse, error) {
	ctx, span := s.tracer.Start(ctx, "rag.ProcessAudioQuestion", trace.WithAttributes(attribute.Int64("user_id", int64(userId))))
	defer span.End()

	started := s.now()

	text, metadata, err := s.transcribe(ctx, audio, filename)
	if err != nil {
		span.RecordError(err)
		message := audioFailurePrefix + err.Error()
		question := &entity.Question{
			QuestionText: "[" + message + "]",
			UserId:       userId,
			SessionId:    sessionId,
			CreatedAt:    started,
		}

		s.transition(0, stateStarted, map[string]interface{}{"audio": filename})
		if err := s.uowFactory.NewUnitOfWork(ctx).QuestionRepository().Create(ctx, question); err != nil {
			s.log.Error(ragModule, "Failed to record audio question", map[string]interface{}{"error": err.Error()})
			return &dto.AnswerResponse{
				Answer:  audioFallbackPrefix + message,
				Sources: []dto.SourceReference{},
				Images:  []dto.ImageReference{},
			}, nil
		}
		s.transition(question.Id, stateQuestionRecorded, nil)
		s.transition(question.Id, stateErrored, map[string]interface{}{"stage": StageTranscription, "error": err.Error()})
		return s.finish(ctx, question, errorResult(message), started), nil
	}

	question := &entity.Question{
		QuestionText: text,
		UserId:       userId,
		SessionId:    sessionId,
		CreatedAt:    started,
	}
	if raw, err := json.Marshal(metadata); err == nil {
		contextFiles := string(raw)
		question.ContextFiles = &contextFiles
	}
	return s.run(ctx, question, started)
}

func (s *ragService) transcribe(ctx context.Context, audio []byte, filename string) (string, map[string]string, error) {
	if s.transcriber == nil {
		return "", nil, ErrTranscriberDisabled
	}
	ctx, span := s.tracer.Start(ctx, "rag.transcribe")
	defer span.End()
	return s.transcriber.Transcribe(ctx, audio, filename)
}

// run records the question, answers it and persists the answer. Only a failure to record the
// question is returned as an error; everything after that ends in an answer.
func (s *ragService) run(ctx context.Context, question *entity.Question, started time.Time) (*dto.AnswerResponse, error) {
	s.transition(0, stateStarted, nil)

	if err := s.uowFactory.NewUnitOfWork(ctx).QuestionRepository().Create(ctx, question); err != nil {
		trace.SpanFromContext(ctx).SetStatus(codes.Error, "record question")
		return nil, fmt.Errorf("record question: %w", err)
	}
	s.transition(question.Id, stateQuestionRecorded, map[string]interface{}{"session_id": question.SessionId})

	result, err := s.answer(ctx, question)
	if err != nil {
		var ragErr *RagError
		if !errors.As(err, &ragErr) {
			ragErr = stageError(StageGeneration, err)
		}
		trace.SpanFromContext(ctx).RecordError(err)
		s.transition(question.Id, stateErrored, map[string]interface{}{"stage": ragErr.Stage, "error": ragErr.Err.Error()})
		result = errorResult(ragErr.Err.Error())
	}

	return s.finish(ctx, question, result, started), nil
}

func (s *ragService) answer(ctx context.Context, question *entity.Question) (*ragResult, error) {
	processed, err := s.ensureDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if processed == nil {
		return cannedResult(NoDocumentsAnswer), nil
	}
	s.transition(question.Id, stateDocumentsEnsured, map[string]interface{}{"documents": len(processed)})

	hits, err := s.retrieve(ctx, question.QuestionText)
	if err != nil {
		return nil, err
	}
	s.transition(question.Id, stateRetrieved, map[string]interface{}{"hits": len(hits)})
	if len(hits) == 0 {
		return cannedResult(NoRelevantAnswer), nil
	}

	genCtx, span := s.tracer.Start(ctx, "rag.generate")
	answerText, err := s.generator.Generate(genCtx, question.QuestionText, buildContext(hits))
	span.End()
	if err != nil {
		return nil, stageError(StageGeneration, err)
	}

	result := &ragResult{
		answer:     answerText,
		sources:    buildSources(hits),
		images:     s.buildImages(ctx, hits, processed),
		confidence: confidence(hits),
	}
	s.transition(question.Id, stateAnswered, map[string]interface{}{
		"sources":          len(result.sources),
		"images":           len(result.images),
		"confidence_score": result.confidence,
	})
	return result, nil
}

// ensureDocuments returns nil when there is nothing to search.
func (s *ragService) ensureDocuments(ctx context.Context) (map[uint]*entity.ProcessedFile, error) {
	ctx, span := s.tracer.Start(ctx, "rag.ensure_documents")
	defer span.End()

	files, err := s.uowFactory.NewUnitOfWork(ctx).FileRepository().FindAllByTypes(ctx, entity.SupportedFileTypes)
	if err != nil {
		return nil, stageError(StageDocuments, err)
	}
	span.SetAttributes(attribute.Int("documents", len(files)))
	if len(files) == 0 {
		s.log.Warn(ragModule, "No documents available for question", nil)
		return nil, nil
	}

	processed := make(map[uint]*entity.ProcessedFile, len(files))
	for _, file := range files {
		pf, err := s.indexer.EnsureIndexed(ctx, file)
		if err != nil {
			return nil, stageError(StageIndexing, err)
		}
		processed[file.Id] = pf
	}
	return processed, nil
}

func (s *ragService) retrieve(ctx context.Context, text string) ([]entity.ScoredChunk, error) {
	ctx, span := s.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, stageError(StageQueryEmbed, err)
	}
	hits, err := s.index.Query(ctx, vector, retrievalK)
	if err != nil {
		return nil, stageError(StageRetrieval, err)
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// finish persists the answer. A persistence failure is logged and the computed answer is still returned.
func (s *ragService) finish(ctx context.Context, question *entity.Question, result *ragResult, started time.Time) *dto.AnswerResponse {
	elapsed := s.now().Sub(started).Milliseconds()

	answer := &entity.Answer{
		QuestionId:       question.Id,
		AnswerText:       result.answer,
		ConfidenceScore:  result.confidence,
		SourcesUsed:      marshalOptional(result.sources),
		ImagesUsed:       marshalOptional(result.images),
		ProcessingTimeMs: &elapsed,
		CreatedAt:        s.now(),
	}

	ctx, span := s.tracer.Start(ctx, "rag.persist")
	err := s.uowFactory.NewUnitOfWork(ctx).AnswerRepository().Create(ctx, answer)
	span.End()
	if err != nil {
		s.transition(question.Id, stateErrored, map[string]interface{}{"stage": StagePersistence, "error": err.Error()})
	} else {
		s.transition(question.Id, statePersisted, map[string]interface{}{"processing_time_ms": elapsed})
		publishQuietly(ctx, s.events, s.log, events.NewQuestionAnswered(question.Id, question.UserId, result.confidence, elapsed))
	}

	return &dto.AnswerResponse{
		Answer:          result.answer,
		Sources:         result.sources,
		Images:          result.images,
		ConfidenceScore: result.confidence,
		QuestionId:      question.Id,
	}
}

func buildContext(hits []entity.ScoredChunk) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = fmt.Sprintf("Source: %s\n%s\n", hit.Chunk.Filename, hit.Chunk.Text)
	}
	return strings.Join(parts, "\n")
}

func buildSources(hits []entity.ScoredChunk) []dto.SourceReference {
	sources := []dto.SourceReference{}
	for _, hit := range topN(hits, sourceLimit) {
		distance := hitDistance(hit)
		if distance > sourceMaxDistance {
			continue
		}
		sources = append(sources, dto.SourceReference{
			FileId:         hit.Chunk.FileId,
			Filename:       hit.Chunk.Filename,
			PageNumber:     hit.Chunk.PageNumber,
			ChunkIndex:     hit.Chunk.ChunkIndex,
			RelevanceScore: 1 - distance,
		})
	}
	return sources
}

func (s *ragService) buildImages(ctx context.Context, hits []entity.ScoredChunk, processed map[uint]*entity.ProcessedFile) []dto.ImageReference {
	images := []dto.ImageReference{}
	seen := make(map[string]struct{})

	for _, hit := range topN(hits, sourceLimit) {
		if 1-hitDistance(hit) < imageMinRelevance {
			continue
		}
		chunk := hit.Chunk
		filename := chunk.Filename
		pf := processed[chunk.FileId]
		if pf != nil && pf.Filename != "" {
			filename = pf.Filename
		}

		for _, b64 := range s.chunkImages(ctx, chunk, pf) {
			if _, dup := seen[b64]; dup {
				continue
			}
			seen[b64] = struct{}{}

			description := imageDescription(filename, chunk.ChunkIndex)
			images = append(images, dto.ImageReference{
				ImagePath:   "data:image/png;base64," + b64,
				Description: &description,
				PageNumber:  chunk.PageNumber,
				FileId:      chunk.FileId,
			})
			if len(images) == imageLimit {
				return images
			}
		}
	}
	return images
}

// chunkImages prefers the processed cache and falls back to stored image rows.
func (s *ragService) chunkImages(ctx context.Context, chunk *entity.DocumentChunk, pf *entity.ProcessedFile) []string {
	if pf != nil && pf.ChunkImages != nil {
		return pf.ChunkImages[chunk.ChunkIndex]
	}

	rows, err := s.uowFactory.NewUnitOfWork(ctx).ImageRepository().FindByFileAndChunk(ctx, chunk.FileId, chunk.ChunkIndex)
	if err != nil {
		s.log.Warn(ragModule, "Failed to load chunk images", map[string]interface{}{
			"file_id":     chunk.FileId,
			"chunk_index": chunk.ChunkIndex,
			"error":       err.Error(),
		})
		return nil
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ImageData
	}
	return out
}

// confidence is one minus the mean distance of every retrieved chunk, clamped to [0, 1].
func confidence(hits []entity.ScoredChunk) float64 {
	if len(hits) == 0 {
		return 0
	}
	var sum float64
	for _, hit := range hits {
		sum += hitDistance(hit)
	}
	return math.Max(0, math.Min(1, 1-sum/float64(len(hits))))
}

// hitDistance reads a non-finite distance (pgvector yields NaN for a zero vector) as unrelated.
func hitDistance(hit entity.ScoredChunk) float64 {
	if math.IsNaN(hit.Distance) || math.IsInf(hit.Distance, 0) {
		return 1
	}
	return hit.Distance
}

func topN(hits []entity.ScoredChunk, n int) []entity.ScoredChunk {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

func marshalOptional[T any](items []T) *string {
	if len(items) == 0 {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	out := string(raw)
	return &out
}

func (s *ragService) GetQuestionHistory(ctx context.Context, userId uint, limit int) ([]*dto.QAPairResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	pairs, err := s.uowFactory.NewUnitOfWork(ctx).QuestionRepository().FindPairsByUser(ctx, userId, limit)
	if err != nil {
		return nil, err
	}
	return toPairResponses(pairs, func(*entity.QAPair) bool { return true }), nil
}

func (s *ragService) GetSessionHistory(ctx context.Context, userId uint, sessionId string) ([]*dto.QAPairResponse, error) {
	pairs, err := s.uowFactory.NewUnitOfWork(ctx).QuestionRepository().FindPairsBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return toPairResponses(pairs, func(p *entity.QAPair) bool { return p.Question.UserId == userId }), nil
}

func (s *ragService) DeleteQuestion(ctx context.Context, userId uint, questionId uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	question, err := uow.QuestionRepository().FindById(ctx, questionId)
	if err != nil {
		return err
	}
	if question == nil || question.UserId != userId {
		return ErrQuestionNotFound
	}

	if err := uow.QuestionRepository().Delete(ctx, questionId); err != nil {
		return err
	}
	s.log.Info(ragModule, "Question deleted", map[string]interface{}{"question_id": questionId})
	return nil
}

func (s *ragService) GetUserStats(ctx context.Context, userId uint) (*dto.UserStatsResponse, error) {
	stats, err := s.uowFactory.NewUnitOfWork(ctx).QuestionRepository().StatsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.UserStatsResponse{
		TotalQuestions: stats.TotalQuestions,
		TotalAnswers:   stats.TotalAnswers,
		AvgConfidence:  stats.AvgConfidence,
	}, nil
}

func toPairResponses(pairs []*entity.QAPair, keep func(*entity.QAPair) bool) []*dto.QAPairResponse {
	res := make([]*dto.QAPairResponse, 0, len(pairs))
	for _, p := range pairs {
		if p.Answer == nil || !keep(p) {
			continue
		}
		res = append(res, &dto.QAPairResponse{
			Question: dto.QuestionDTO{
				Id:           p.Question.Id,
				QuestionText: p.Question.QuestionText,
				UserId:       p.Question.UserId,
				SessionId:    p.Question.SessionId,
				CreatedAt:    p.Question.CreatedAt,
			},
			Answer: dto.AnswerDTO{
				Id:               p.Answer.Id,
				AnswerText:       p.Answer.AnswerText,
				ConfidenceScore:  p.Answer.ConfidenceScore,
				Sources:          unmarshalList[dto.SourceReference](p.Answer.SourcesUsed),
				Images:           unmarshalList[dto.ImageReference](p.Answer.ImagesUsed),
				ProcessingTimeMs: p.Answer.ProcessingTimeMs,
				CreatedAt:        p.Answer.CreatedAt,
			},
		})
	}
	return res
}

func unmarshalList[T any](raw *string) []T {
	out := []T{}
	if raw == nil || *raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return []T{}
	}
	return out
}

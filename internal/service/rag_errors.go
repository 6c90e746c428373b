package service

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionNotFound    = errors.New("question not found")
	ErrTranscriberDisabled = errors.New("audio transcription is not configured")
)

type RagStage string

const (
	StageDocuments     RagStage = "documents"
	StageIndexing      RagStage = "indexing"
	StageQueryEmbed    RagStage = "query_embedding"
	StageRetrieval     RagStage = "retrieval"
	StageGeneration    RagStage = "generation"
	StagePersistence   RagStage = "persistence"
	StageTranscription RagStage = "transcription"
)

// RagError is a pipeline failure after the question was recorded. It becomes an answer, not an HTTP error.
type RagError struct {
	Stage RagStage
	Err   error
}

func (e *RagError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *RagError) Unwrap() error {
	return e.Err
}

func stageError(stage RagStage, err error) *RagError {
	return &RagError{Stage: stage, Err: err}
}

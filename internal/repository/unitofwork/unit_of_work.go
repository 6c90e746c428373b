package unitofwork

import (
	"context"

	"docqa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FileRepository() contract.FileRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ImageRepository() contract.ImageRepository
	QuestionRepository() contract.QuestionRepository
	AnswerRepository() contract.AnswerRepository
}

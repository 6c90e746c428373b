package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/events"

	"github.com/google/uuid"
)

const filesModule = "FILES"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type: only pdf and docx are accepted")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileNotFound        = errors.New("file not found")
)

var contentTypes = map[entity.FileType]string{
	entity.FileTypePDF:  "application/pdf",
	entity.FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type FileContent struct {
	Filename    string
	ContentType string
	Data        []byte
}

type IFileService interface {
	Upload(ctx context.Context, userId uint, filename string, data []byte) (*dto.UploadFileResponse, error)
	ListDocuments(ctx context.Context, userId uint) ([]*dto.FileResponse, error)
	GetContent(ctx context.Context, userId uint, id uint) (*FileContent, error)
	Delete(ctx context.Context, userId uint, id uint) error
}

type fileService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	indexer          IIndexerService
	events           IEventPublisher
	storagePath      string
	log              logger.ILogger
}

func NewFileService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	indexer IIndexerService,
	eventPublisher IEventPublisher,
	storagePath string,
	log logger.ILogger,
) IFileService {
	return &fileService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		indexer:          indexer,
		events:           eventPublisher,
		storagePath:      storagePath,
		log:              log,
	}
}

// FileTypeOf maps a filename extension to a supported document type.
func FileTypeOf(filename string) (entity.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	fileType := entity.FileType(ext)
	if !fileType.IsSupported() {
		return "", ErrUnsupportedFileType
	}
	return fileType, nil
}

func (s *fileService) Upload(ctx context.Context, userId uint, filename string, data []byte) (*dto.UploadFileResponse, error) {
	fileType, err := FileTypeOf(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.FileRepository().FindByUserAndHash(ctx, userId, contentHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.UploadFileResponse{File: toFileResponse(existing), Duplicate: true}, nil
	}

	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	storedName := fmt.Sprintf("%s.%s", uuid.New().String(), fileType)
	path := filepath.Join(s.storagePath, storedName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	file := &entity.File{
		Filename:         storedName,
		OriginalFilename: filepath.Base(filename),
		FilePath:         path,
		FileSize:         int64(len(data)),
		FileType:         fileType,
		ContentHash:      contentHash,
		UserId:           userId,
		CreatedAt:        time.Now(),
	}
	if err := uow.FileRepository().Create(ctx, file); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	s.log.Info(filesModule, "Document uploaded", map[string]interface{}{
		"file_id":  file.Id,
		"filename": file.OriginalFilename,
		"size":     file.FileSize,
	})

	msgJson, err := json.Marshal(dto.PublishDocumentUploadedMessage{FileId: file.Id})
	if err == nil {
		err = s.publisherService.Publish(ctx, msgJson)
	}
	if err != nil {
		// the document is indexed lazily on the next question anyway
		s.log.Warn(filesModule, "Failed to queue document for indexing", map[string]interface{}{
			"file_id": file.Id,
			"error":   err.Error(),
		})
	}

	return &dto.UploadFileResponse{File: toFileResponse(file)}, nil
}

func (s *fileService) ListDocuments(ctx context.Context, userId uint) ([]*dto.FileResponse, error) {
	files, err := s.uowFactory.NewUnitOfWork(ctx).FileRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.FileResponse, 0, len(files))
	for _, f := range files {
		r := toFileResponse(f)
		res = append(res, &r)
	}
	return res, nil
}

func (s *fileService) owned(ctx context.Context, userId, id uint) (*entity.File, error) {
	file, err := s.uowFactory.NewUnitOfWork(ctx).FileRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if file == nil || file.UserId != userId {
		return nil, ErrFileNotFound
	}
	return file, nil
}

func (s *fileService) GetContent(ctx context.Context, userId uint, id uint) (*FileContent, error) {
	file, err := s.owned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("read file %d: %w", id, err)
	}

	return &FileContent{
		Filename:    file.OriginalFilename,
		ContentType: contentTypes[file.FileType],
		Data:        data,
	}, nil
}

func (s *fileService) Delete(ctx context.Context, userId uint, id uint) error {
	file, err := s.owned(ctx, userId, id)
	if err != nil {
		return err
	}

	if err := s.indexer.Forget(ctx, id); err != nil {
		return err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).FileRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(file.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn(filesModule, "Failed to remove stored file", map[string]interface{}{
			"file_id": id,
			"path":    file.FilePath,
			"error":   err.Error(),
		})
	}

	s.log.Info(filesModule, "Document deleted", map[string]interface{}{"file_id": id})
	publishQuietly(ctx, s.events, s.log, events.NewDocumentDeleted(id, userId))
	return nil
}

func toFileResponse(f *entity.File) dto.FileResponse {
	return dto.FileResponse{
		Id:               f.Id,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FileSize:         f.FileSize,
		FileType:         string(f.FileType),
		ContentHash:      f.ContentHash,
		CreatedAt:        f.CreatedAt,
	}
}

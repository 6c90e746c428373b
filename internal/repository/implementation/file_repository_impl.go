package implementation

import (
	"context"
	"errors"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FileMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewFileMapper(),
	}
}

func (r *FileRepositoryImpl) Create(ctx context.Context, file *entity.File) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error) {
	var m model.File
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FileRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.File, error) {
	var models []*model.File
	if err := specification.Apply(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FileRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.File, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *FileRepositoryImpl) FindByUserAndHash(ctx context.Context, userId uint, contentHash string) (*entity.File, error) {
	return r.findOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByContentHash{Hash: contentHash},
	)
}

func (r *FileRepositoryImpl) FindAllByTypes(ctx context.Context, types []entity.FileType) ([]*entity.File, error) {
	return r.findAll(ctx,
		specification.ByFileTypes{Types: types},
		specification.OrderBy{Field: "id"},
	)
}

func (r *FileRepositoryImpl) FindAllByUser(ctx context.Context, userId uint) ([]*entity.File, error) {
	return r.findAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.File{}, id).Error
}

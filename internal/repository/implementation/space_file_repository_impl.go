package implementation

import (
	"context"
	"errors"

	"note-agent-be/internal/entity"
	"note-agent-be/internal/mapper"
	"note-agent-be/internal/model"
	"note-agent-be/internal/repository/contract"
	"note-agent-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpaceFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SpaceFileMapper
}

func NewSpaceFileRepository(db *gorm.DB) contract.SpaceFileRepository {
	return &SpaceFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewSpaceFileMapper(),
	}
}

func (r *SpaceFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SpaceFileRepositoryImpl) Create(ctx context.Context, file *entity.SpaceFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *SpaceFileRepositoryImpl) Update(ctx context.Context, file *entity.SpaceFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *SpaceFileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SpaceFile{}, id).Error
}

func (r *SpaceFileRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.SpaceFile{}).Error
}

func (r *SpaceFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SpaceFile, error) {
	var m model.SpaceFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SpaceFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SpaceFile, error) {
	var models []*model.SpaceFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SpaceFileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SpaceFile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

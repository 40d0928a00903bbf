package mapper

import (
	"time"

	"note-agent-be/internal/entity"
	"note-agent-be/internal/model"

	"gorm.io/gorm"
)

type SpaceFileMapper struct{}

func NewSpaceFileMapper() *SpaceFileMapper {
	return &SpaceFileMapper{}
}

func (m *SpaceFileMapper) ToEntity(f *model.SpaceFile) *entity.SpaceFile {
	if f == nil {
		return nil
	}

	var deletedAt *time.Time
	if f.DeletedAt.Valid {
		t := f.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.SpaceFile{
		Id:        f.Id,
		FileName:  f.FileName,
		FileType:  f.FileType,
		FilePath:  f.FilePath,
		IsNote:    f.IsNote,
		SpaceId:   f.SpaceId,
		UserId:    f.UserId,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: f.DeletedAt.Valid,
	}
}

func (m *SpaceFileMapper) ToModel(f *entity.SpaceFile) *model.SpaceFile {
	if f == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if f.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *f.DeletedAt, Valid: true}
	} else if f.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.SpaceFile{
		Id:        f.Id,
		FileName:  f.FileName,
		FileType:  f.FileType,
		FilePath:  f.FilePath,
		IsNote:    f.IsNote,
		SpaceId:   f.SpaceId,
		UserId:    f.UserId,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SpaceFileMapper) ToEntities(files []*model.SpaceFile) []*entity.SpaceFile {
	entities := make([]*entity.SpaceFile, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}

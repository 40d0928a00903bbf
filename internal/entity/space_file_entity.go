package entity

import (
	"time"

	"github.com/google/uuid"
)

type SpaceFile struct {
	Id        uuid.UUID
	FileName  string
	FileType  string
	FilePath  string
	IsNote    bool
	SpaceId   uuid.UUID
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpaceFile struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileName  string         `gorm:"type:varchar(255);not null"`
	FileType  string         `gorm:"type:varchar(100);not null"`
	FilePath  string         `gorm:"type:text;not null"`
	IsNote    bool           `gorm:"not null;default:false"`
	SpaceId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SpaceFile) TableName() string {
	return "space_files"
}

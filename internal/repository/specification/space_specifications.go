package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySpaceID struct {
	SpaceID uuid.UUID
}

func (s BySpaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("space_id = ?", s.SpaceID)
}

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByFileID struct {
	FileID uuid.UUID
}

func (s ByFileID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_id = ?", s.FileID)
}

// NotesOnly restricts space file queries to editable note documents.
type NotesOnly struct{}

func (s NotesOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_note = ?", true)
}

package contract

import (
	"context"

	"note-agent-be/internal/entity"
	"note-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SpaceFileRepository interface {
	Create(ctx context.Context, file *entity.SpaceFile) error
	Update(ctx context.Context, file *entity.SpaceFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SpaceFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SpaceFile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

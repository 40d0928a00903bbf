package unitofwork

import (
	"context"

	"note-agent-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SpaceFileRepository() contract.SpaceFileRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
}

package service

import (
	"context"
	"fmt"

	"note-agent-be/internal/repository/specification"
	"note-agent-be/internal/repository/unitofwork"
	"note-agent-be/pkg/agent/tool"

	"github.com/google/uuid"
)

// fileStore adapts the space file repository to the agent tool contract.
type fileStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ tool.FileStore = &fileStore{}

func NewFileStore(uowFactory unitofwork.RepositoryFactory) tool.FileStore {
	return &fileStore{uowFactory: uowFactory}
}

func (fs *fileStore) GetFile(ctx context.Context, fileId string) (*tool.SpaceFile, error) {
	id, err := uuid.Parse(fileId)
	if err != nil {
		return nil, fmt.Errorf("invalid file id %q: %w", fileId, err)
	}

	uow := fs.uowFactory.NewUnitOfWork(ctx)
	f, err := uow.SpaceFileRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}

	return &tool.SpaceFile{
		Id:       f.Id.String(),
		FileName: f.FileName,
		FileType: f.FileType,
		FilePath: f.FilePath,
		IsNote:   f.IsNote,
		SpaceId:  f.SpaceId,
		UserId:   f.UserId,
	}, nil
}

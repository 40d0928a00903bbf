package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"note-agent-be/internal/dto"
	"note-agent-be/internal/entity"
	"note-agent-be/internal/repository/specification"
	"note-agent-be/internal/repository/unitofwork"
	"note-agent-be/pkg/agent/note"
	"note-agent-be/pkg/agent/tool"
	"note-agent-be/pkg/embedding"
	"note-agent-be/pkg/lexical"
	"note-agent-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	storage           tool.ObjectStorage
	bucket            string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	storage tool.ObjectStorage,
	bucket string,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		storage:           storage,
		bucket:            bucket,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedFileMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing file embedding for FileId: %s", payload.FileId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.SpaceFileRepository().FindOne(ctx, specification.ByID{ID: payload.FileId})
	if err != nil {
		log.Printf("[ERROR] Failed to get file %s: %v", payload.FileId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if file == nil {
		log.Printf("[ERROR] File not found: %s", payload.FileId)
		msg.Ack() // File deleted? Ack.
		return
	}

	content, err := cs.loadText(ctx, file)
	if err != nil {
		log.Printf("[ERROR] Failed to load content for file %s: %v", payload.FileId, err)
		msg.Nack()
		return
	}

	document := fmt.Sprintf("File Name: %s\n\n%s", file.FileName, content)

	log.Printf("[INFO] Generating embeddings for file %s (content length: %d)", payload.FileId, len(document))

	// ChunkSize 1500 chars with 200 overlap keeps chunks well inside the
	// embedding model's context window.
	chunks := utils.SplitText(document, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newEmbeddings []*entity.NoteEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskTypeRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of file %s: %v", i, payload.FileId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.NoteEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			FileId:         file.Id,
			SpaceId:        file.SpaceId,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	log.Printf("[INFO] Deleting old embeddings for file %s", payload.FileId)
	if err := uow.NoteEmbeddingRepository().DeleteByFileId(ctx, file.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.NoteEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] File processed: %d chunks for FileId: %s", len(newEmbeddings), payload.FileId)
	msg.Ack()
}

// loadText downloads the file and flattens it to plain text. Agent edits
// land under the virtual prefix, so that copy wins when present.
func (cs *consumerService) loadText(ctx context.Context, file *entity.SpaceFile) (string, error) {
	raw, err := cs.storage.Download(ctx, cs.bucket, tool.VirtualPathPrefix+file.FilePath)
	if err != nil {
		raw, err = cs.storage.Download(ctx, cs.bucket, file.FilePath)
		if err != nil {
			return "", err
		}
	}

	if file.IsNote {
		doc, err := note.ParseDocument(raw)
		if err != nil {
			return "", fmt.Errorf("invalid note document: %w", err)
		}
		return doc.PlainText(), nil
	}

	// Non-note files may carry Lexical editor JSON from older clients;
	// anything else is indexed as-is.
	return lexical.ParseContent(string(raw)), nil
}

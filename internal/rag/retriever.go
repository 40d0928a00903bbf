package rag

import (
	"context"
	"fmt"
	"strings"

	"note-agent-be/internal/repository/unitofwork"
	"note-agent-be/pkg/embedding"
	"note-agent-be/pkg/rag"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLimit     = 5
	defaultThreshold = 0.35
)

// PgVectorRetriever answers retrieval rounds from the note_embeddings
// table using cosine similarity over pgvector.
type PgVectorRetriever struct {
	embedder  embedding.EmbeddingProvider
	factory   unitofwork.RepositoryFactory
	limit     int
	threshold float64
	logger    *zap.Logger
}

var _ rag.Retriever = &PgVectorRetriever{}

func NewPgVectorRetriever(embedder embedding.EmbeddingProvider, factory unitofwork.RepositoryFactory, logger *zap.Logger) *PgVectorRetriever {
	return &PgVectorRetriever{
		embedder:  embedder,
		factory:   factory,
		limit:     defaultLimit,
		threshold: defaultThreshold,
		logger:    logger,
	}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, query string, spaceId uuid.UUID) (rag.Result, error) {
	resp, err := r.embedder.Generate(query, embedding.TaskTypeRetrievalQuery)
	if err != nil {
		return rag.Result{}, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := r.factory.NewUnitOfWork(ctx)
	scored, err := uow.NoteEmbeddingRepository().SearchSimilarWithScore(ctx, resp.Embedding.Values, r.limit, spaceId, r.threshold)
	if err != nil {
		return rag.Result{}, fmt.Errorf("similarity search failed: %w", err)
	}

	if len(scored) == 0 {
		return rag.Result{
			Message:    "No relevant notes were found in the knowledge base for this query.",
			ResultType: "rag_results",
		}, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d relevant note excerpts:\n", len(scored)))
	sources := make([]map[string]interface{}, len(scored))
	for i, s := range scored {
		sb.WriteString(fmt.Sprintf("\n[%d] %s\n", i+1, s.Embedding.Document))
		sources[i] = map[string]interface{}{
			"file_id":     s.Embedding.FileId.String(),
			"chunk_index": s.Embedding.ChunkIndex,
			"similarity":  s.Similarity,
		}
	}

	r.logger.Debug("rag retrieval complete",
		zap.String("space_id", spaceId.String()),
		zap.Int("hits", len(scored)))

	return rag.Result{
		Message:    sb.String(),
		ResultType: "rag_results",
		Sources:    sources,
	}, nil
}

// Package rag defines the retrieval collaborator consumed by the agent
// loop. The core only depends on the interface; real search lives with the
// host.
package rag

import (
	"context"

	"github.com/google/uuid"
)

// Result is what a retrieval round contributes to the session context.
type Result struct {
	Message    string                   `json:"message"`
	ResultType string                   `json:"result_type"`
	Sources    []map[string]interface{} `json:"sources,omitempty"`
}

// Retriever fetches knowledge-base context for a query within a space.
type Retriever interface {
	Retrieve(ctx context.Context, query string, spaceId uuid.UUID) (Result, error)
}

// StubRetriever is the placeholder used when no retrieval backend is
// configured. It reports itself as unimplemented so the loop moves on.
type StubRetriever struct{}

func (StubRetriever) Retrieve(ctx context.Context, query string, spaceId uuid.UUID) (Result, error) {
	return Result{
		Message:    "RAG has not been implemented yet, continue",
		ResultType: "placeholder",
	}, nil
}

package dto

import (
	"encoding/json"
	"time"

	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/session"

	"github.com/google/uuid"
)

type AgentQueryRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	SpaceId       uuid.UUID `json:"space_id" validate:"required"`
	Query         string    `json:"query" validate:"required"`
	ActiveFileId  string    `json:"active_file_id,omitempty"`
	ModelName     string    `json:"model_name,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
}

type AgentResponseMetadata struct {
	Thinking    []session.ThinkingStep `json:"thinking,omitempty"`
	ToolCalls   int                    `json:"tool_calls"`
	QueryTimeMs int64                  `json:"query_time_ms"`
}

type AgentResponse struct {
	Success  bool                  `json:"success"`
	Response string                `json:"response"`
	Metadata AgentResponseMetadata `json:"metadata"`
	Workflow []event.Event         `json:"workflow,omitempty"`
}

type CreateAgentSessionRequest struct {
	SpaceId uuid.UUID `json:"space_id" validate:"required"`
}

type CreateAgentSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID       `json:"id"`
	Role      string          `json:"role"`
	Chat      string          `json:"chat"`
	Workflow  json.RawMessage `json:"workflow,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PublishEmbedFileMessage asks the background consumer to refresh the
// vector index for one space file.
type PublishEmbedFileMessage struct {
	FileId uuid.UUID `json:"file_id"`
}

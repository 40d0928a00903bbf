package events

import "time"

const AgentFlowCompletedType = "agent.flow.completed"

// AgentFlowCompleted is emitted after an agent run finishes and its
// answer has been persisted. Downstream consumers use it for analytics
// and notification fan-out.
type AgentFlowCompleted struct {
	ChatSessionID string
	UserID        string
	Query         string
	Success       bool
	ToolCalls     int
	DurationMs    int64
	At            time.Time
}

func (e AgentFlowCompleted) EventType() string {
	return AgentFlowCompletedType
}

func (e AgentFlowCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"chat_session_id": e.ChatSessionID,
		"user_id":         e.UserID,
		"query":           e.Query,
		"success":         e.Success,
		"tool_calls":      e.ToolCalls,
		"duration_ms":     e.DurationMs,
	}
}

func (e AgentFlowCompleted) Timestamp() time.Time {
	return e.At
}

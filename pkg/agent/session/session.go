package session

import (
	"note-agent-be/pkg/agent/event"

	"github.com/google/uuid"
)

// Default circuit-breaker limits for the orchestration loop.
const (
	DefaultMaxToolRetries    = 3
	DefaultMaxTotalToolCalls = 5
)

// Context keys inside Session.Context.
const (
	ContextKeyRagResults  = "rag_results"
	ContextKeyToolResults = "tool_results"
)

// ActionRecord is one completed orchestration step. Records are immutable
// once appended to the session history.
type ActionRecord struct {
	Kind       string                 `json:"action"` // "decide" | "tool"
	ToolName   string                 `json:"tool_name,omitempty"`
	ResultType string                 `json:"result_type,omitempty"`
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Result     map[string]interface{} `json:"result,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// ThinkingStep is one reasoning snippet captured from a decision call.
type ThinkingStep struct {
	Step     int    `json:"step"`
	Thinking string `json:"thinking"`
}

// Session carries all mutable state for one user query through the
// orchestration loop. It is owned by the orchestrator, lives for exactly one
// query, and is never persisted by the core. Components must not retain a
// reference to it past their own step.
type Session struct {
	Query           string
	Context         map[string]interface{}
	ActionHistory   []ActionRecord
	ThinkingHistory []ThinkingStep

	ActiveFileId string
	SpaceId      uuid.UUID
	UserId       uuid.UUID
	ModelName    string
	Stream       bool

	ToolRetryCount    int
	TotalToolCalls    int
	MaxToolRetries    int
	MaxTotalToolCalls int

	Events *event.Stream
}

// New builds a session with the default limits and an empty context map.
func New(query string, events *event.Stream) *Session {
	return &Session{
		Query:             query,
		Context:           make(map[string]interface{}),
		MaxToolRetries:    DefaultMaxToolRetries,
		MaxTotalToolCalls: DefaultMaxTotalToolCalls,
		Events:            events,
	}
}

// Emit forwards to the session event stream, tolerating a nil stream so the
// core can run without an observer.
func (s *Session) Emit(ev event.Event) {
	if s.Events != nil {
		s.Events.Emit(ev)
	}
}

// RecordDecision appends the minimal decide-step record plus the reasoning
// snippet behind it.
func (s *Session) RecordDecision(action, thinking string) {
	s.ActionHistory = append(s.ActionHistory, ActionRecord{Kind: "decide", Message: action})
	s.ThinkingHistory = append(s.ThinkingHistory, ThinkingStep{
		Step:     len(s.ThinkingHistory) + 1,
		Thinking: thinking,
	})
}

// RecordTool appends a normalized tool record and updates the retry and
// call counters.
func (s *Session) RecordTool(record ActionRecord) {
	s.ActionHistory = append(s.ActionHistory, record)
	s.TotalToolCalls++
	if record.Success {
		s.ToolRetryCount = 0
	} else {
		s.ToolRetryCount++
	}
}

// RetryExhausted reports whether consecutive tool failures hit the limit.
func (s *Session) RetryExhausted() bool {
	return s.ToolRetryCount >= s.MaxToolRetries
}

// CallBudgetExhausted reports whether the total tool-call budget is spent.
func (s *Session) CallBudgetExhausted() bool {
	return s.TotalToolCalls >= s.MaxTotalToolCalls
}

// LastActions returns up to n most recent action records, oldest first.
func (s *Session) LastActions(n int) []ActionRecord {
	if len(s.ActionHistory) <= n {
		return s.ActionHistory
	}
	return s.ActionHistory[len(s.ActionHistory)-n:]
}

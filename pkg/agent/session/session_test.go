package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-agent-be/pkg/agent/event"
)

func TestCountersTrackRetriesAndBudget(t *testing.T) {
	sess := New("edit my note", nil)

	failure := ActionRecord{Kind: "tool", ToolName: "file_interaction", Success: false}
	success := ActionRecord{Kind: "tool", ToolName: "file_interaction", Success: true}

	sess.RecordTool(failure)
	sess.RecordTool(failure)
	assert.False(t, sess.RetryExhausted(), "two failures must not exhaust the default retry limit")

	sess.RecordTool(success)
	assert.Zero(t, sess.ToolRetryCount, "success must reset retry count")
	assert.Equal(t, 3, sess.TotalToolCalls)

	sess.RecordTool(failure)
	sess.RecordTool(failure)
	assert.True(t, sess.CallBudgetExhausted(), "five calls must exhaust the default budget")

	sess.RecordTool(failure)
	assert.True(t, sess.RetryExhausted(), "three consecutive failures must exhaust the retry limit")
}

func TestRecordDecisionKeepsThinkingSteps(t *testing.T) {
	sess := New("q", nil)
	sess.RecordDecision("tool", "need to look at the file")
	sess.RecordDecision("finish", "enough information now")

	require.Len(t, sess.ActionHistory, 2)
	require.Len(t, sess.ThinkingHistory, 2)
	assert.Equal(t, 2, sess.ThinkingHistory[1].Step)
}

func TestLastActions(t *testing.T) {
	sess := New("q", nil)
	for i := 0; i < 5; i++ {
		sess.RecordDecision("tool", "")
	}

	assert.Len(t, sess.LastActions(3), 3)
	assert.Len(t, sess.LastActions(10), 5)
}

func TestEmitToleratesNilStream(t *testing.T) {
	sess := New("q", nil)
	// Must not panic.
	sess.Emit(event.Event{Type: event.TypeDecisionStart})
}

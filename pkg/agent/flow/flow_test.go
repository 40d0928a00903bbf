package flow

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-agent-be/pkg/agent/decide"
	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/agent/tool"
	"note-agent-be/pkg/llm"
	"note-agent-be/pkg/rag"
)

type scriptedDecider struct {
	decisions []decide.Decision
	err       error
	calls     int
}

func (d *scriptedDecider) Decide(ctx context.Context, sess *session.Session) (decide.Decision, error) {
	if d.err != nil {
		return decide.Decision{}, d.err
	}
	i := d.calls
	d.calls++
	if i >= len(d.decisions) {
		return decide.Decision{Action: decide.ActionFinish}, nil
	}
	return d.decisions[i], nil
}

type scriptedTool struct {
	results []*tool.Result
	err     error
	panics  bool
	calls   int
}

func (t *scriptedTool) Name() string { return "file_interaction" }

func (t *scriptedTool) Invoke(ctx context.Context, sess *session.Session, params map[string]interface{}) (*tool.Result, error) {
	i := t.calls
	t.calls++
	if t.panics {
		panic("tool blew up")
	}
	if t.err != nil {
		return nil, t.err
	}
	if i >= len(t.results) {
		return t.results[len(t.results)-1], nil
	}
	return t.results[i], nil
}

type streamProvider struct {
	answer        string
	err           error
	calls         int
	generateCalls int
	lastOpts      llm.Options
}

var _ llm.LLMProvider = &streamProvider{}

func (p *streamProvider) resolve(opts []llm.Option) {
	p.lastOpts = llm.Options{}
	for _, opt := range opts {
		opt(&p.lastOpts)
	}
}

func (p *streamProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.answer, p.err
}

func (p *streamProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.generateCalls++
	p.resolve(opts)
	return p.answer, p.err
}

func (p *streamProvider) GenerateStream(ctx context.Context, prompt string, onDelta func(string), opts ...llm.Option) (string, error) {
	p.calls++
	p.resolve(opts)
	if p.err != nil {
		return "", p.err
	}
	if onDelta != nil {
		onDelta(p.answer)
	}
	return p.answer, p.err
}

func failureResult() *tool.Result {
	return &tool.Result{
		ToolName:   "file_interaction",
		ResultType: "tool_execution",
		Payload:    map[string]interface{}{"success": false, "error": "File with ID x not found"},
	}
}

func successResult() *tool.Result {
	return &tool.Result{
		ToolName:   "file_interaction",
		ResultType: "tool_execution",
		Payload:    map[string]interface{}{"success": true, "message": "File processed"},
	}
}

func drain(sess *session.Session) []event.Event {
	sess.Events.Close()
	var out []event.Event
	for ev := range sess.Events.Events() {
		out = append(out, ev)
	}
	return out
}

func countType(events []event.Event, typ event.Type) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func newTestOrchestrator(decider decide.Decider, t tool.Tool, provider llm.LLMProvider) *Orchestrator {
	o := NewOrchestrator(decider, rag.StubRetriever{}, provider, log.New(log.Writer(), "", 0))
	if t != nil {
		o.Register(t)
	}
	return o
}

func TestRunFinishesImmediately(t *testing.T) {
	provider := &streamProvider{answer: "Hello there."}
	o := newTestOrchestrator(&scriptedDecider{}, nil, provider)
	sess := session.New("hi", event.NewStream())

	answer, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", answer)

	events := drain(sess)
	assert.Equal(t, 1, countType(events, event.TypeDecisionStart))
	assert.Equal(t, 1, countType(events, event.TypeFinishStart))
	assert.Equal(t, 1, countType(events, event.TypeFlowComplete))
	assert.Zero(t, countType(events, event.TypeForcedFinish))
}

func TestRunForcesFinishAfterConsecutiveFailures(t *testing.T) {
	decider := &scriptedDecider{decisions: []decide.Decision{
		{Action: decide.ActionTool},
		{Action: decide.ActionTool},
		{Action: decide.ActionTool},
		{Action: decide.ActionTool}, // never reached
	}}
	tl := &scriptedTool{results: []*tool.Result{failureResult()}}
	provider := &streamProvider{answer: "Sorry, I could not complete that."}
	o := newTestOrchestrator(decider, tl, provider)
	sess := session.New("edit my note", event.NewStream())

	answer, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Equal(t, 3, tl.calls, "third failure must trip the breaker")
	assert.Equal(t, 3, sess.ToolRetryCount)

	events := drain(sess)
	assert.Equal(t, 1, countType(events, event.TypeForcedFinish), "exactly one forced_finish")
	assert.Equal(t, 1, countType(events, event.TypeFinishStart))
	// The breaker fires before a tool_complete for the tripping call.
	assert.Equal(t, 2, countType(events, event.TypeToolComplete))
}

func TestRunForcesFinishWhenCallBudgetSpent(t *testing.T) {
	var decisions []decide.Decision
	for i := 0; i < 10; i++ {
		decisions = append(decisions, decide.Decision{Action: decide.ActionTool})
	}
	tl := &scriptedTool{results: []*tool.Result{successResult()}}
	provider := &streamProvider{answer: "done"}
	o := newTestOrchestrator(&scriptedDecider{decisions: decisions}, tl, provider)
	sess := session.New("keep working", event.NewStream())

	_, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, session.DefaultMaxTotalToolCalls, tl.calls)
	assert.Equal(t, session.DefaultMaxTotalToolCalls, sess.TotalToolCalls)

	events := drain(sess)
	assert.Equal(t, 1, countType(events, event.TypeForcedFinish))
}

func TestRunDecisionErrorIsFatal(t *testing.T) {
	decider := &scriptedDecider{err: &decide.DecisionError{Action: "self_destruct"}}
	o := newTestOrchestrator(decider, nil, &streamProvider{answer: "x"})
	sess := session.New("q", event.NewStream())

	_, err := o.Run(context.Background(), sess)

	var de *decide.DecisionError
	require.ErrorAs(t, err, &de)

	events := drain(sess)
	assert.Zero(t, countType(events, event.TypeFinishStart), "no finish after a fatal decision error")
}

func TestRunAbsorbsToolPanic(t *testing.T) {
	decider := &scriptedDecider{decisions: []decide.Decision{{Action: decide.ActionTool}}}
	tl := &scriptedTool{panics: true}
	provider := &streamProvider{answer: "recovered"}
	o := newTestOrchestrator(decider, tl, provider)
	sess := session.New("q", event.NewStream())

	answer, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)

	require.NotEmpty(t, sess.ActionHistory)
	var toolRecord *session.ActionRecord
	for i := range sess.ActionHistory {
		if sess.ActionHistory[i].Kind == "tool" {
			toolRecord = &sess.ActionHistory[i]
		}
	}
	require.NotNil(t, toolRecord)
	assert.False(t, toolRecord.Success)
	assert.Equal(t, "unknown", toolRecord.ToolName)

	events := drain(sess)
	assert.Equal(t, 1, countType(events, event.TypeToolExecutionError))
}

func TestRunAbsorbsToolError(t *testing.T) {
	decider := &scriptedDecider{decisions: []decide.Decision{{Action: decide.ActionTool}}}
	tl := &scriptedTool{err: errors.New("downstream unavailable")}
	o := newTestOrchestrator(decider, tl, &streamProvider{answer: "ok"})
	sess := session.New("q", event.NewStream())

	_, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.ToolRetryCount)
}

func TestRunRagStoresContextAndLoops(t *testing.T) {
	decider := &scriptedDecider{decisions: []decide.Decision{{Action: decide.ActionRag}}}
	o := newTestOrchestrator(decider, nil, &streamProvider{answer: "answer"})
	sess := session.New("what do my notes say", event.NewStream())

	_, err := o.Run(context.Background(), sess)
	require.NoError(t, err)

	ragCtx, ok := sess.Context[session.ContextKeyRagResults].(map[string]interface{})
	require.True(t, ok, "rag results stored in context")
	assert.NotEmpty(t, ragCtx["message"])

	events := drain(sess)
	assert.Equal(t, 1, countType(events, event.TypeRagComplete))
}

func TestRunGenerationErrorIsFatal(t *testing.T) {
	provider := &streamProvider{err: errors.New("model overloaded")}
	o := newTestOrchestrator(&scriptedDecider{}, nil, provider)
	sess := session.New("q", event.NewStream())

	_, err := o.Run(context.Background(), sess)

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
}

func TestRunStreamsDeltasToHandler(t *testing.T) {
	provider := &streamProvider{answer: "streamed answer"}
	var got []string
	o := newTestOrchestrator(&scriptedDecider{}, nil, provider).
		WithDeltaHandler(func(delta string) { got = append(got, delta) })
	sess := session.New("tell me something", event.NewStream())
	sess.Stream = true

	answer, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, answer, strings.Join(got, ""))
}

func TestRunPassesRequestedModelToFinalGeneration(t *testing.T) {
	provider := &streamProvider{answer: "answer"}
	o := newTestOrchestrator(&scriptedDecider{}, nil, provider)
	sess := session.New("tell me something", event.NewStream())
	sess.Stream = true
	sess.ModelName = "gpt-4o-mini"

	_, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", provider.lastOpts.Model)
	assert.Equal(t, 1, provider.calls)
}

func TestRunWithoutStreamingUsesBlockingGeneration(t *testing.T) {
	provider := &streamProvider{answer: "answer"}
	var got []string
	o := newTestOrchestrator(&scriptedDecider{}, nil, provider).
		WithDeltaHandler(func(delta string) { got = append(got, delta) })
	sess := session.New("tell me something", event.NewStream())

	answer, err := o.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
	assert.Equal(t, 1, provider.generateCalls)
	assert.Zero(t, provider.calls)
	assert.Empty(t, got, "deltas must not fire on a non-streaming run")
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		res         *tool.Result
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "payload success flag wins",
			res:         successResult(),
			wantSuccess: true,
			wantMessage: "File processed",
		},
		{
			name:        "payload failure carries its error",
			res:         failureResult(),
			wantSuccess: false,
			wantMessage: "File with ID x not found",
		},
		{
			name: "payload success flag beats top-level error",
			res: &tool.Result{
				ToolName: "file_interaction",
				Error:    "stale",
				Payload:  map[string]interface{}{"success": true, "message": "ok"},
			},
			wantSuccess: true,
			wantMessage: "ok",
		},
		{
			name:        "top-level error",
			res:         &tool.Result{ToolName: "file_interaction", ResultType: "tool_execution", Error: "boom"},
			wantSuccess: false,
			wantMessage: "boom",
		},
		{
			name:        "error result type",
			res:         &tool.Result{ToolName: "unknown", ResultType: "error"},
			wantSuccess: false,
			wantMessage: "Tool execution error",
		},
		{
			name:        "bare result counts as success",
			res:         &tool.Result{ToolName: "file_interaction", ResultType: "tool_execution"},
			wantSuccess: true,
			wantMessage: "Tool executed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Aggregate(tt.res)
			assert.Equal(t, "tool", record.Kind)
			assert.Equal(t, tt.wantSuccess, record.Success)
			assert.Equal(t, tt.wantMessage, record.Message)
		})
	}
}

func TestAggregateDefaultsNames(t *testing.T) {
	record := Aggregate(&tool.Result{})
	assert.Equal(t, "unknown", record.ToolName)
	assert.Equal(t, "unknown", record.ResultType)
}

func TestContextPayloadAddsEditSummary(t *testing.T) {
	res := &tool.Result{
		ToolName:   "file_interaction",
		ResultType: "file_edit",
		FileId:     uuid.NewString(),
		Payload: map[string]interface{}{
			"success": true,
			"message": "File updated successfully",
			"changes": "Added a closing paragraph",
		},
	}

	ctx := contextPayload(res)
	summary, _ := ctx["success_summary"].(string)
	assert.Contains(t, summary, "Added a closing paragraph")
}

func TestIsCasual(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"good morning", true},
		{"how are you", true},
		{"what's up", true},
		{"hey there", true},
		{"hey can you edit my note for me", false},
		{"Summarize the attached project plan and list open risks", false},
		{"Fix the broken table in my note", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isCasual(tt.query), "query %q", tt.query)
	}
}

func TestFinishPromptDisclosesForcedFinish(t *testing.T) {
	sess := session.New("edit my note please", nil)
	prompt := finishPrompt(sess, "The system encountered 3 consecutive tool failures and could not complete your request. ")
	assert.Contains(t, prompt, "IMPORTANT NOTE:")
	assert.Contains(t, prompt, "3 consecutive tool failures")
}

func TestFinishPromptIncludesActionOutcomes(t *testing.T) {
	sess := session.New("please update the heading in my note", nil)
	sess.RecordTool(session.ActionRecord{
		Kind:     "tool",
		ToolName: "file_interaction",
		Success:  true,
		Message:  "File updated successfully",
		Result:   map[string]interface{}{"changes": "Renamed the heading"},
	})
	sess.Context[session.ContextKeyToolResults] = map[string]interface{}{
		"tool_name":   "file_interaction",
		"result_type": "file_edit",
		"result":      map[string]interface{}{"success": true, "message": "File updated successfully", "changes": "Renamed the heading"},
	}

	prompt := finishPrompt(sess, "")
	assert.Contains(t, prompt, "✅ SUCCESS")
	assert.Contains(t, prompt, "Renamed the heading")
}

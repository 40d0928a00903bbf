// Package flow runs the decide/tool/finish loop for one user query. The
// loop always returns to the decision step after retrieval or a tool call,
// and two circuit breakers bound it: consecutive tool failures and the
// total tool-call budget. Either one forces the finish step.
package flow

import (
	"context"
	"fmt"
	"log"

	"note-agent-be/pkg/agent/decide"
	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/agent/tool"
	"note-agent-be/pkg/llm"
	"note-agent-be/pkg/rag"
)

// GenerationError wraps a failure of the final response generation. It is
// fatal to the run; everything the loop gathered is lost with it.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("final response generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Orchestrator drives one session through the loop. It owns no session
// state itself and is safe to share across concurrent runs.
type Orchestrator struct {
	decider     decide.Decider
	retriever   rag.Retriever
	provider    llm.LLMProvider
	tools       map[string]tool.Tool
	defaultTool string
	onDelta     func(delta string)
	logger      *log.Logger
}

func NewOrchestrator(decider decide.Decider, retriever rag.Retriever, provider llm.LLMProvider, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		decider:   decider,
		retriever: retriever,
		provider:  provider,
		tools:     make(map[string]tool.Tool),
		logger:    logger,
	}
}

// Register adds a tool. The first registered tool handles generic "tool"
// decisions; later ones are reachable by name.
func (o *Orchestrator) Register(t tool.Tool) *Orchestrator {
	if o.defaultTool == "" {
		o.defaultTool = t.Name()
	}
	o.tools[t.Name()] = t
	return o
}

// WithDeltaHandler installs a callback for incremental final-answer text.
// Deltas bypass the event stream so observers see progress events and the
// caller sees answer text, matching how responses are streamed to clients.
func (o *Orchestrator) WithDeltaHandler(fn func(delta string)) *Orchestrator {
	o.onDelta = fn
	return o
}

// Run executes the loop until the finish step produces the final answer.
// A decision the model is not allowed to make (decide.DecisionError) and a
// failed final generation (GenerationError) are the only fatal outcomes;
// every tool failure is absorbed into the history and fed back to the
// decision step.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sess.Emit(event.Event{Type: event.TypeDecisionStart, Message: "Making decision on next action"})

		decision, err := o.decider.Decide(ctx, sess)
		if err != nil {
			return "", err
		}

		sess.Emit(event.Event{Type: event.TypeDecision, Decision: decision.Action})
		if decision.Thinking != "" {
			sess.Emit(event.Event{
				Type:    event.TypeReasoning,
				Content: fmt.Sprintf("Initial Decision: I'm deciding on the next step for '%s'\n\n%s", sess.Query, decision.Thinking),
			})
		}
		sess.RecordDecision(decision.Action, decision.Thinking)
		o.logger.Printf("[FLOW] next action %q", decision.Action)

		switch {
		case decision.Action == decide.ActionRag:
			o.runRag(ctx, sess)
		case decision.IsTool():
			if forced, reason := o.runTool(ctx, sess); forced {
				return o.finish(ctx, sess, reason)
			}
		default:
			return o.finish(ctx, sess, "")
		}
	}
}

func (o *Orchestrator) runRag(ctx context.Context, sess *session.Session) {
	res, err := o.retriever.Retrieve(ctx, sess.Query, sess.SpaceId)
	if err != nil {
		o.logger.Printf("[FLOW] retrieval failed: %v", err)
		res = rag.Result{
			Message:    fmt.Sprintf("Context retrieval failed: %v", err),
			ResultType: "error",
		}
	}

	sess.Context[session.ContextKeyRagResults] = map[string]interface{}{
		"message":     res.Message,
		"result_type": res.ResultType,
		"sources":     res.Sources,
	}
	sess.Emit(event.Event{Type: event.TypeRagComplete, Message: res.Message})
}

// runTool executes one tool call and folds the outcome into the session.
// It reports whether a circuit breaker tripped, with the disclosure text
// the finish step owes the user when one did.
func (o *Orchestrator) runTool(ctx context.Context, sess *session.Session) (forced bool, reason string) {
	sess.Emit(event.Event{
		Type:    event.TypeToolExecutionStart,
		Message: "Starting tool selection and execution process",
		Query:   sess.Query,
	})

	res := o.invoke(ctx, sess)
	record := Aggregate(res)
	sess.Context[session.ContextKeyToolResults] = contextPayload(res)
	sess.RecordTool(record)

	if !record.Success {
		o.logger.Printf("[FLOW] tool failed, retry count now at %d", sess.ToolRetryCount)
	}

	if sess.RetryExhausted() {
		o.logger.Printf("[FLOW] tool retry limit reached (%d), forcing finish", sess.ToolRetryCount)
		sess.Emit(event.Event{
			Type:    event.TypeForcedFinish,
			Message: "Automatically finishing due to too many consecutive tool failures",
		})
		return true, fmt.Sprintf("The system encountered %d consecutive tool failures and could not complete your request. ", sess.ToolRetryCount)
	}
	if sess.CallBudgetExhausted() {
		o.logger.Printf("[FLOW] total tool call limit reached (%d), forcing finish", sess.TotalToolCalls)
		sess.Emit(event.Event{
			Type:    event.TypeForcedFinish,
			Message: "Automatically finishing due to maximum tool call limit reached",
		})
		return true, fmt.Sprintf("The system reached the maximum number of tool calls (%d) and could not complete all operations. ", sess.TotalToolCalls)
	}

	sess.Emit(event.Event{Type: event.TypeToolComplete, Tool: record.ToolName})
	return false, ""
}

// invoke calls the tool and converts every failure mode, error return,
// panic or missing registration, into an error result the loop can absorb.
func (o *Orchestrator) invoke(ctx context.Context, sess *session.Session) (res *tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("[FLOW] tool panicked: %v", r)
			msg := fmt.Sprintf("Error executing tool: %v", r)
			sess.Emit(event.Event{Type: event.TypeToolExecutionError, Message: msg, Error: fmt.Sprint(r)})
			res = errorResult(msg)
		}
	}()

	t, ok := o.tools[o.defaultTool]
	if !ok {
		sess.Emit(event.Event{
			Type:    event.TypeToolExecutionError,
			Message: "No tool is registered to handle this action",
			Error:   "no tool registered",
		})
		return errorResult("No tool is registered to handle this action")
	}

	out, err := t.Invoke(ctx, sess, map[string]interface{}{})
	if err != nil {
		msg := fmt.Sprintf("Error executing tool: %v", err)
		sess.Emit(event.Event{Type: event.TypeToolExecutionError, Message: msg, Error: err.Error()})
		return errorResult(msg)
	}
	if out == nil {
		sess.Emit(event.Event{
			Type:    event.TypeToolExecutionError,
			Message: "Tool execution returned no results",
			Error:   "no results returned",
		})
		return errorResult("Tool execution returned no results")
	}
	return out
}

func errorResult(msg string) *tool.Result {
	return &tool.Result{
		ToolName:   "unknown",
		ResultType: "error",
		Error:      msg,
	}
}

func (o *Orchestrator) finish(ctx context.Context, sess *session.Session, forcedMessage string) (string, error) {
	sess.Emit(event.Event{Type: event.TypeFinishStart, Message: "Starting final response generation"})

	prompt := finishPrompt(sess, forcedMessage)

	onDelta := o.onDelta
	if onDelta == nil {
		onDelta = func(string) {}
	}

	opts := []llm.Option{
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(2048),
	}
	if sess.ModelName != "" {
		opts = append(opts, llm.WithModel(sess.ModelName))
	}

	var answer string
	var err error
	if sess.Stream {
		answer, err = o.provider.GenerateStream(ctx, prompt, onDelta, opts...)
	} else {
		answer, err = o.provider.Generate(ctx, prompt, opts...)
	}
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	sess.Emit(event.Event{Type: event.TypeFlowComplete, Message: "Agent flow completed successfully"})
	return answer, nil
}

// Package decide asks the language model what the orchestration loop should
// do next. The action vocabulary is closed; anything outside it surfaces as
// a DecisionError instead of falling through to a default path.
package decide

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/llm"
	"note-agent-be/pkg/utils"
)

// Recognized decision actions.
const (
	ActionRag    = "rag"
	ActionTool   = "tool"
	ActionFinish = "finish"
)

// Decision is the model's verdict on the next loop step.
type Decision struct {
	Action   string
	Thinking string
}

// IsTool reports whether the action routes to tool invocation.
func (d Decision) IsTool() bool {
	return d.Action == ActionTool || d.Action == "file_interaction"
}

// DecisionError means the model produced an unrecognized or missing action.
// It is fatal to the session; the caller decides whether to retry the whole
// query.
type DecisionError struct {
	Action string
	Raw    string
}

func (e *DecisionError) Error() string {
	if e.Action == "" {
		return "decision response carried no action"
	}
	return fmt.Sprintf("unrecognized decision action %q", e.Action)
}

// Decider is the decision collaborator contract consumed by the
// orchestration loop.
type Decider interface {
	Decide(ctx context.Context, sess *session.Session) (Decision, error)
}

// LLMDecider resolves decisions through an LLM provider using a fast,
// low-temperature call.
type LLMDecider struct {
	provider llm.LLMProvider
}

func NewLLMDecider(provider llm.LLMProvider) *LLMDecider {
	return &LLMDecider{provider: provider}
}

type decisionResponse struct {
	Thinking string `yaml:"thinking"`
	Action   string `yaml:"action"`
}

func (d *LLMDecider) Decide(ctx context.Context, sess *session.Session) (Decision, error) {
	prompt := buildDecisionPrompt(sess)

	raw, err := d.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return Decision{}, fmt.Errorf("decision call failed: %w", err)
	}

	var resp decisionResponse
	if err := yaml.Unmarshal([]byte(utils.ExtractYAMLBlock(raw)), &resp); err != nil {
		return Decision{}, &DecisionError{Raw: raw}
	}

	action := strings.TrimSpace(strings.ToLower(resp.Action))
	switch action {
	case ActionRag, ActionTool, ActionFinish, "file_interaction":
	case "":
		return Decision{}, &DecisionError{Raw: raw}
	default:
		return Decision{}, &DecisionError{Action: action, Raw: raw}
	}

	return Decision{Action: action, Thinking: resp.Thinking}, nil
}

func buildDecisionPrompt(sess *session.Session) string {
	var sb strings.Builder

	sb.WriteString("# USER QUERY\n")
	sb.WriteString(sess.Query)
	sb.WriteString("\n\n")

	if len(sess.ActionHistory) > 0 {
		sb.WriteString("# ACTIONS SO FAR\n")
		for i, rec := range sess.ActionHistory {
			if rec.Kind == "tool" {
				status := "failed"
				if rec.Success {
					status = "succeeded"
				}
				fmt.Fprintf(&sb, "%d. tool %s %s: %s\n", i+1, rec.ToolName, status, rec.Message)
			} else {
				fmt.Fprintf(&sb, "%d. decided: %s\n", i+1, rec.Message)
			}
		}
		sb.WriteString("\n")
	}

	if rag, ok := sess.Context[session.ContextKeyRagResults]; ok {
		fmt.Fprintf(&sb, "# RETRIEVED CONTEXT\n%v\n\n", rag)
	}

	if sess.ActiveFileId != "" {
		fmt.Fprintf(&sb, "# ACTIVE FILE\nThe user currently has file %s open.\n\n", sess.ActiveFileId)
	}

	sb.WriteString(`# TASK
Decide the single next step for answering the user:
- "tool" to read or edit the user's active file (file viewing, note editing)
- "rag" to retrieve knowledge-base context
- "finish" to answer directly with what is already known

Prefer "finish" once enough information is available, or when the query is
conversational. Do not repeat a tool call that already failed the same way.

Respond in YAML format:
` + "```yaml" + `
thinking: |
    <your step-by-step reasoning>
action: <one of: tool, rag, finish>
` + "```\n")

	return sb.String()
}

package decide

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/llm"
)

type scriptedProvider struct {
	response string
	err      error
}

var _ llm.LLMProvider = &scriptedProvider{}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.response, p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.response, p.err
}

func (p *scriptedProvider) GenerateStream(ctx context.Context, prompt string, onDelta func(string), opts ...llm.Option) (string, error) {
	if p.err == nil && onDelta != nil {
		onDelta(p.response)
	}
	return p.response, p.err
}

func TestDecideParsesFencedYAML(t *testing.T) {
	provider := &scriptedProvider{response: "```yaml\nthinking: the user wants the file edited\naction: tool\n```"}
	d := NewLLMDecider(provider)

	decision, err := d.Decide(context.Background(), session.New("edit my note", nil))
	require.NoError(t, err)
	assert.Equal(t, ActionTool, decision.Action)
	assert.NotEmpty(t, decision.Thinking, "thinking was dropped")
}

func TestDecideNormalizesCase(t *testing.T) {
	provider := &scriptedProvider{response: "thinking: done\naction: FINISH"}
	d := NewLLMDecider(provider)

	decision, err := d.Decide(context.Background(), session.New("q", nil))
	require.NoError(t, err)
	assert.Equal(t, ActionFinish, decision.Action)
}

func TestDecideAcceptsFileInteraction(t *testing.T) {
	provider := &scriptedProvider{response: "thinking: file work\naction: file_interaction"}
	d := NewLLMDecider(provider)

	decision, err := d.Decide(context.Background(), session.New("q", nil))
	require.NoError(t, err)
	assert.True(t, decision.IsTool(), "file_interaction must route to the tool step")
}

func TestDecideUnknownActionIsDecisionError(t *testing.T) {
	provider := &scriptedProvider{response: "thinking: hmm\naction: fly_to_moon"}
	d := NewLLMDecider(provider)

	_, err := d.Decide(context.Background(), session.New("q", nil))

	var de *DecisionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "fly_to_moon", de.Action)
}

func TestDecideMissingActionIsDecisionError(t *testing.T) {
	provider := &scriptedProvider{response: "thinking: no verdict here"}
	d := NewLLMDecider(provider)

	_, err := d.Decide(context.Background(), session.New("q", nil))

	var de *DecisionError
	require.ErrorAs(t, err, &de)
}

func TestDecideProviderErrorIsNotDecisionError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	d := NewLLMDecider(provider)

	_, err := d.Decide(context.Background(), session.New("q", nil))
	require.Error(t, err)
	var de *DecisionError
	assert.False(t, errors.As(err, &de), "transport failures must not masquerade as decision errors")
}

package patch

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-agent-be/pkg/agent/note"
)

func mustDoc(t *testing.T, raw string) note.Document {
	t.Helper()
	doc, err := note.ParseDocument([]byte(raw))
	require.NoError(t, err, "parse fixture")
	return doc
}

const twoBlockDoc = `[
	{"id":"b1","type":"paragraph","content":[{"type":"text","text":"first"}],"children":[]},
	{"id":"b2","type":"paragraph","content":[{"type":"text","text":"second"}],"children":[]}
]`

func TestApplyAppend(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	updated, err := Apply(doc, Proposal{
		Action:  ActionAppend,
		Payload: `[{"id":"b3","type":"paragraph","content":[{"type":"text","text":"third"}],"children":[]}]`,
	})
	require.NoError(t, err)
	require.Len(t, updated, 3)
	assert.Equal(t, "b3", updated[2].Id)
	assert.Len(t, doc, 2, "input document must not be mutated")
}

func TestApplyAppendPreservesEmptyProps(t *testing.T) {
	doc := mustDoc(t, `[]`)

	updated, err := Apply(doc, Proposal{
		Action:  ActionAppend,
		Payload: `[{"id":"x","type":"paragraph","props":{},"content":[],"children":[]}]`,
	})
	require.NoError(t, err)

	rendered, err := updated.Render()
	require.NoError(t, err)
	assert.Contains(t, string(rendered), `"props":{}`,
		"an explicit empty props object must survive the round trip")
}

func TestApplyAppendRejectsNonArray(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	_, err := Apply(doc, Proposal{Action: ActionAppend, Payload: `{"id":"b3"}`})

	var pe *PatchError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "append", pe.Stage)
}

func TestApplyReplaceSnippetByBlockId(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	payload := `<<<<<<< ORIGINAL // Line 2
{"id":"b2","type":"paragraph","content":[{"type":"text","text":"second"}],"children":[]}
=======
{"id":"b2","type":"heading","props":{"level":2},"content":[{"type":"text","text":"SECOND"}],"children":[]}
>>>>>>> UPDATED // Line 3`

	updated, err := Apply(doc, Proposal{Action: ActionReplaceSnippet, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "heading", updated[1].Type)
	assert.Equal(t, "paragraph", doc[1].Type, "input document must not be mutated")
}

func TestApplyReplaceSnippetIdentityMatchIsRepeatable(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	payload := `<<<<<<< ORIGINAL // Line 2
{"id":"b2","type":"paragraph","content":[{"type":"text","text":"second"}],"children":[]}
=======
{"id":"b2","type":"paragraph","content":[{"type":"text","text":"rewritten"}],"children":[]}
>>>>>>> UPDATED // Line 3`
	proposal := Proposal{Action: ActionReplaceSnippet, Payload: payload}

	once, err := Apply(doc, proposal)
	require.NoError(t, err)
	// The replacement still carries id b2, so applying the same proposal to
	// the result targets the same block again instead of drifting or failing.
	twice, err := Apply(once, proposal)
	require.NoError(t, err)

	onceRendered, err := once.Render()
	require.NoError(t, err)
	twiceRendered, err := twice.Render()
	require.NoError(t, err)
	assert.Equal(t, string(onceRendered), string(twiceRendered))

	assert.Equal(t, "b1", twice[0].Id)
	assert.JSONEq(t, string(doc[0].Content), string(twice[0].Content),
		"untargeted blocks must be untouched")
	assert.Contains(t, string(twice[1].Content), "rewritten")
}

func TestApplyReplaceSnippetUnknownBlockId(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	payload := `<<<<<<< ORIGINAL // Line 2
{"id":"ghost","type":"paragraph","content":[],"children":[]}
=======
{"id":"ghost","type":"paragraph","content":[],"children":[]}
>>>>>>> UPDATED // Line 3`

	_, err := Apply(doc, Proposal{Action: ActionReplaceSnippet, Payload: payload})

	var pe *PatchError
	require.ErrorAs(t, err, &pe)
}

func TestApplyReplaceSnippetByLineSplice(t *testing.T) {
	doc := mustDoc(t, `[{"id":"b1","type":"paragraph","content":[],"children":[]}]`)

	// Locate the type line in the pretty rendering and rewrite it in place.
	pretty, err := doc.RenderPretty()
	require.NoError(t, err)
	lineNo := findLine(t, string(pretty), `"type": "paragraph"`)

	payload := fmt.Sprintf(`<<<<<<< ORIGINAL // Line %d
        "type": "paragraph",
=======
        "type": "heading",
>>>>>>> UPDATED // Line %d`, lineNo, lineNo)

	updated, err := Apply(doc, Proposal{Action: ActionReplaceSnippet, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "heading", updated[0].Type)
}

func TestApplyReplaceSnippetSpliceFailureIsLoud(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	// The updated text breaks the surrounding JSON when spliced in.
	payload := `<<<<<<< ORIGINAL // Line 1
[
=======
this is not json
>>>>>>> UPDATED // Line 2`

	updated, err := Apply(doc, Proposal{Action: ActionReplaceSnippet, Payload: payload})

	var pe *PatchError
	require.ErrorAs(t, err, &pe, "broken splice must fail loudly")
	assert.Nil(t, updated, "failed splice must not yield a document")
}

func TestApplyReplaceSnippetLineRangeOutOfBounds(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	payload := `<<<<<<< ORIGINAL // Line 500
whatever
=======
whatever
>>>>>>> UPDATED // Line 501`

	_, err := Apply(doc, Proposal{Action: ActionReplaceSnippet, Payload: payload})
	var pe *PatchError
	require.ErrorAs(t, err, &pe)
}

func TestApplyRejectsNonEditActions(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	for _, action := range []Action{ActionNeedsMoreContext, Action("delete_all")} {
		_, err := Apply(doc, Proposal{Action: action})
		var pe *PatchError
		assert.ErrorAs(t, err, &pe, "action %q", action)
	}
}

func TestApplyResultAlwaysValidJSON(t *testing.T) {
	doc := mustDoc(t, twoBlockDoc)

	updated, err := Apply(doc, Proposal{
		Action:  ActionAppend,
		Payload: `[{"id":"b3","type":"paragraph","content":[],"children":[]}]`,
	})
	require.NoError(t, err)
	raw, err := updated.Render()
	require.NoError(t, err)
	assert.True(t, json.Valid(raw), "rendered result must be valid JSON")
}

func findLine(t *testing.T, text, needle string) int {
	t.Helper()
	for i, line := range splitLines(text) {
		if strings.Contains(line, needle) {
			return i + 1
		}
	}
	t.Fatalf("needle %q not found in rendering", needle)
	return 0
}

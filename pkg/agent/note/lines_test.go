package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberLinesValidDocument(t *testing.T) {
	content := []byte(`[{"id":"b1","type":"paragraph","content":[{"type":"text","text":"hello"}],"children":[]}]`)

	numbered := NumberLines(content)
	lines := strings.Split(numbered, "\n")

	assert.True(t, strings.HasPrefix(lines[0], "1: "), "first line carries number 1: %q", lines[0])
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, strings.Split(line, ":")[0]+":"),
			"line %d missing number prefix: %q", i+1, line)
	}
	// Valid JSON is pretty-printed before numbering, so the block spreads
	// over multiple lines.
	assert.GreaterOrEqual(t, len(lines), 5, "expected pretty-printed multi-line output")
}

func TestNumberLinesInvalidJSONFallsBackToRaw(t *testing.T) {
	content := []byte("not json\nsecond line")

	numbered := NumberLines(content)
	lines := strings.Split(numbered, "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "1: not json", lines[0])
	assert.Equal(t, "2: second line", lines[1])
}

func TestParseDocumentRejectsNonArray(t *testing.T) {
	_, err := ParseDocument([]byte(`{"id":"b1"}`))
	assert.Error(t, err, "non-array document")

	_, err = ParseDocument([]byte(`garbage`))
	assert.Error(t, err, "invalid JSON")
}

func TestDocumentRoundTrip(t *testing.T) {
	content := []byte(`[{"id":"b1","type":"paragraph","props":{"textColor":"default"},"content":[{"type":"text","text":"hi","styles":{}}],"children":[]}]`)

	doc, err := ParseDocument(content)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.IndexOf("b1"))
	assert.Equal(t, -1, doc.IndexOf("missing"))

	rendered, err := doc.Render()
	require.NoError(t, err)
	again, err := ParseDocument(rendered)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "b1", again[0].Id)
	assert.Equal(t, "paragraph", again[0].Type)
	assert.JSONEq(t, `{"textColor":"default"}`, string(again[0].Props))
}

func TestRenderPreservesEmptyProps(t *testing.T) {
	content := `[{"id":"x","type":"paragraph","props":{},"content":[],"children":[]},{"id":"y","type":"paragraph","content":[],"children":[]}]`

	doc, err := ParseDocument([]byte(content))
	require.NoError(t, err)

	rendered, err := doc.Render()
	require.NoError(t, err)

	// An explicit empty props object round-trips; a block without props
	// stays without one.
	assert.Contains(t, string(rendered), `{"id":"x","type":"paragraph","props":{},"content":[],"children":[]}`)
	assert.Contains(t, string(rendered), `{"id":"y","type":"paragraph","content":[],"children":[]}`)
}

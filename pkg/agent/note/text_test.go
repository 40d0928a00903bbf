package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextFlattensBlocksAndChildren(t *testing.T) {
	content := []byte(`[
		{"id":"b1","type":"heading","content":[{"type":"text","text":"Trip "},{"type":"text","text":"plan"}],"children":[]},
		{"id":"b2","type":"paragraph","content":[{"type":"text","text":"Pack light"}],"children":[
			{"id":"b3","type":"paragraph","content":[{"type":"text","text":"One bag only"}],"children":[]}
		]}
	]`)

	doc, err := ParseDocument(content)
	require.NoError(t, err)

	assert.Equal(t, "Trip plan\nPack light\nOne bag only", doc.PlainText())
}

func TestPlainTextSkipsNonInlineContent(t *testing.T) {
	content := []byte(`[
		{"id":"b1","type":"table","content":{"type":"tableContent","rows":[]},"children":[]},
		{"id":"b2","type":"paragraph","content":[{"type":"text","text":"after the table"}],"children":[]}
	]`)

	doc, err := ParseDocument(content)
	require.NoError(t, err)

	assert.Equal(t, "after the table", doc.PlainText())
}

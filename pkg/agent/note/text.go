package note

import (
	"encoding/json"
	"strings"
)

type inlineContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PlainText flattens the document into newline-separated text, one line per
// block, for indexing. Formatting and block metadata are dropped.
func (d Document) PlainText() string {
	var sb strings.Builder
	writeBlocksText(d, &sb)
	return strings.TrimRight(sb.String(), "\n")
}

func writeBlocksText(blocks []Block, sb *strings.Builder) {
	for _, b := range blocks {
		line := blockText(b)
		if line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if len(b.Children) > 0 {
			writeBlocksText(b.Children, sb)
		}
	}
}

func blockText(b Block) string {
	if len(b.Content) == 0 {
		return ""
	}

	var inline []inlineContent
	if err := json.Unmarshal(b.Content, &inline); err != nil {
		// Content can also be a table or other structured payload; fall
		// back to nothing rather than raw JSON noise.
		return ""
	}

	var parts []string
	for _, c := range inline {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "")
}

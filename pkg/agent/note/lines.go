package note

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NumberLines renders note content as 1-based line-numbered text so a model
// can address specific lines. Valid JSON is pretty-printed first; anything
// else is numbered as-is.
func NumberLines(content []byte) string {
	var doc Document
	if err := json.Unmarshal(content, &doc); err == nil {
		if pretty, err := doc.RenderPretty(); err == nil {
			return numberRaw(string(pretty))
		}
	}
	return numberRaw(string(content))
}

func numberRaw(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, line)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

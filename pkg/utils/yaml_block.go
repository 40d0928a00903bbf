package utils

import "strings"

// ExtractYAMLBlock pulls the YAML body out of a model response. Fenced
// ```yaml blocks win; otherwise the text from the first "thinking:" or
// "action:" key onward is taken; otherwise the input is returned untouched.
func ExtractYAMLBlock(text string) string {
	if start := strings.Index(text, "```yaml"); start != -1 {
		body := text[start+len("```yaml"):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimSpace(body[:end])
		}
	}

	idx := strings.Index(text, "thinking:")
	if idx == -1 {
		idx = strings.Index(text, "action:")
	}
	if idx != -1 {
		lineStart := strings.LastIndex(text[:idx], "\n")
		if lineStart == -1 {
			lineStart = 0
		} else {
			lineStart++
		}
		return strings.TrimSpace(text[lineStart:])
	}

	return text
}

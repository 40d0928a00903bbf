package patch

import (
	"strconv"
	"strings"
)

const (
	markerOriginal  = "<<<<<<< ORIGINAL //"
	markerSeparator = "======="
	markerUpdated   = ">>>>>>> UPDATED //"
)

// SnippetFormatExample is the replace_snippet payload shape, for embedding
// in prompts that ask a model to produce one.
const SnippetFormatExample = `<<<<<<< ORIGINAL // Line X
<the exact lines being replaced>
=======
<the replacement lines>
>>>>>>> UPDATED // Line Y`

// snippet is a parsed replace_snippet payload: the original/updated pair
// plus the 1-based line window it addresses in the pretty rendering.
type snippet struct {
	StartLine int
	EndLine   int
	Original  string
	Updated   string
}

// parseSnippet decodes the delimited replacement block:
//
//	<<<<<<< ORIGINAL // Line X
//	<original text>
//	=======
//	<new text>
//	>>>>>>> UPDATED // Line Y
func parseSnippet(spec string) (*snippet, error) {
	if !strings.Contains(spec, markerOriginal) ||
		!strings.Contains(spec, markerSeparator) ||
		!strings.Contains(spec, markerUpdated) {
		return nil, patchErrorf("snippet", "replacement specification is missing required markers")
	}

	_, afterOriginal, _ := strings.Cut(spec, markerOriginal)
	headLine, rest, ok := strings.Cut(afterOriginal, "\n")
	if !ok {
		return nil, patchErrorf("snippet", "nothing follows the ORIGINAL marker")
	}
	startLine, err := parseLineRef(headLine)
	if err != nil {
		return nil, patchErrorf("snippet", "bad ORIGINAL line reference: %v", err)
	}

	originalPart, updatedPart, ok := strings.Cut(rest, markerSeparator)
	if !ok {
		return nil, patchErrorf("snippet", "separator between original and updated content is missing")
	}

	updatedText, tail, ok := strings.Cut(updatedPart, markerUpdated)
	if !ok {
		return nil, patchErrorf("snippet", "UPDATED marker is missing")
	}
	endLine, err := parseLineRef(tail)
	if err != nil {
		return nil, patchErrorf("snippet", "bad UPDATED line reference: %v", err)
	}

	return &snippet{
		StartLine: startLine,
		EndLine:   endLine,
		Original:  strings.TrimSpace(originalPart),
		Updated:   strings.TrimSpace(updatedText),
	}, nil
}

// parseLineRef extracts the integer from a "Line N" fragment.
func parseLineRef(fragment string) (int, error) {
	_, after, ok := strings.Cut(fragment, "Line")
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(strings.TrimSpace(after))
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

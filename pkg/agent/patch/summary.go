package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"note-agent-be/pkg/agent/note"
)

// Summarize renders a short human-readable line diff between two documents,
// used to describe an applied edit in tool results and final answers.
func Summarize(before, after note.Document) string {
	beforeText := prettyOrEmpty(before)
	afterText := prettyOrEmpty(after)

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(beforeText, afterText)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	added, removed := 0, 0
	var sample []string
	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(lines)
			for _, l := range lines {
				if len(sample) < 6 {
					sample = append(sample, "+ "+strings.TrimSpace(l))
				}
			}
		case diffmatchpatch.DiffDelete:
			removed += len(lines)
			for _, l := range lines {
				if len(sample) < 6 {
					sample = append(sample, "- "+strings.TrimSpace(l))
				}
			}
		}
	}

	if added == 0 && removed == 0 {
		return "no textual changes"
	}
	summary := fmt.Sprintf("%d line(s) added, %d line(s) removed", added, removed)
	if len(sample) > 0 {
		summary += "\n" + strings.Join(sample, "\n")
	}
	return summary
}

func prettyOrEmpty(doc note.Document) string {
	raw, err := doc.RenderPretty()
	if err != nil {
		return ""
	}
	return string(raw)
}

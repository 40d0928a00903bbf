// Package patch applies model-proposed edits to block-tree note documents.
// Proposals arrive as parsed model output; applying one either yields a new
// document that is guaranteed to re-parse as valid JSON, or fails with a
// *PatchError. The engine never mutates its input.
package patch

import (
	"encoding/json"
	"fmt"

	"note-agent-be/pkg/agent/note"
)

// Action is the edit kind a proposal carries.
type Action string

const (
	ActionAppend           Action = "append"
	ActionReplaceSnippet   Action = "replace_snippet"
	ActionNeedsMoreContext Action = "needs_more_context"
)

// Proposal is one parsed model instruction for mutating a document. It is
// transient; it only exists for the duration of a single tool invocation.
type Proposal struct {
	Action  Action
	Payload string
	Reason  string
}

// PatchError reports a proposal that could not be applied safely.
type PatchError struct {
	Stage string
	Err   error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %s: %v", e.Stage, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

func patchErrorf(stage, format string, args ...interface{}) *PatchError {
	return &PatchError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// Apply produces the document that results from applying the proposal to
// doc. The input document is never modified.
func Apply(doc note.Document, p Proposal) (note.Document, error) {
	switch p.Action {
	case ActionAppend:
		return applyAppend(doc, p.Payload)
	case ActionReplaceSnippet:
		return applyReplaceSnippet(doc, p.Payload)
	case ActionNeedsMoreContext:
		return nil, patchErrorf("apply", "needs_more_context is not an edit")
	default:
		return nil, patchErrorf("apply", "unknown edit action %q", p.Action)
	}
}

func applyAppend(doc note.Document, payload string) (note.Document, error) {
	var blocks []note.Block
	if err := json.Unmarshal([]byte(payload), &blocks); err != nil {
		return nil, &PatchError{Stage: "append", Err: fmt.Errorf("appended content is not a valid block array: %w", err)}
	}

	updated := make(note.Document, 0, len(doc)+len(blocks))
	updated = append(updated, doc...)
	updated = append(updated, blocks...)
	return revalidate(updated, "append")
}

func applyReplaceSnippet(doc note.Document, payload string) (note.Document, error) {
	snip, err := parseSnippet(payload)
	if err != nil {
		return nil, err
	}

	// Identity match first: when the original segment is a block object with
	// an id, the replacement targets that block wherever it currently sits,
	// immune to any line-number drift in the proposal.
	if id, ok := snippetBlockId(snip.Original); ok {
		idx := doc.IndexOf(id)
		if idx < 0 {
			return nil, patchErrorf("replace", "referenced block %q not present in document", id)
		}

		var replacement note.Block
		if err := json.Unmarshal([]byte(snip.Updated), &replacement); err != nil {
			return nil, &PatchError{Stage: "replace", Err: fmt.Errorf("replacement content is not a valid block: %w", err)}
		}

		updated := make(note.Document, len(doc))
		copy(updated, doc)
		updated[idx] = replacement
		return revalidate(updated, "replace")
	}

	return spliceLines(doc, snip)
}

// snippetBlockId extracts the id when the original segment itself parses as
// a JSON object carrying one.
func snippetBlockId(original string) (string, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(original), &obj); err != nil {
		return "", false
	}
	id, ok := obj["id"].(string)
	return id, ok && id != ""
}

// spliceLines is the line-addressed fallback: replace lines [X-1, Y) of the
// canonical pretty rendering with the updated text and re-parse. A result
// that does not parse is an error, never a silent no-op.
func spliceLines(doc note.Document, snip *snippet) (note.Document, error) {
	pretty, err := doc.RenderPretty()
	if err != nil {
		return nil, &PatchError{Stage: "replace", Err: err}
	}

	lines := splitLines(string(pretty))
	if snip.StartLine < 1 || snip.StartLine > len(lines) || snip.EndLine < 1 || snip.EndLine > len(lines) {
		return nil, patchErrorf("replace", "line range %d-%d outside document (%d lines)", snip.StartLine, snip.EndLine, len(lines))
	}

	spliced := make([]string, 0, len(lines))
	spliced = append(spliced, lines[:snip.StartLine-1]...)
	spliced = append(spliced, splitLines(snip.Updated)...)
	spliced = append(spliced, lines[snip.EndLine:]...)

	updated, err := note.ParseDocument([]byte(joinLines(spliced)))
	if err != nil {
		// Recovery check: report whether the replacement text alone was
		// valid, so the caller's retry prompt can name the real problem.
		if json.Valid([]byte(snip.Updated)) {
			return nil, patchErrorf("replace", "spliced document is not valid JSON (replacement content was valid on its own): %v", err)
		}
		return nil, patchErrorf("replace", "spliced document is not valid JSON: %v", err)
	}
	return revalidate(updated, "replace")
}

// revalidate round-trips the result so an invalid document is never
// surfaced as success.
func revalidate(doc note.Document, stage string) (note.Document, error) {
	raw, err := doc.Render()
	if err != nil {
		return nil, &PatchError{Stage: stage, Err: err}
	}
	if !json.Valid(raw) {
		return nil, patchErrorf(stage, "result is not valid JSON")
	}
	return doc, nil
}

package tool

import (
	"fmt"
	"strings"

	"note-agent-be/pkg/agent/note"
	"note-agent-be/pkg/agent/patch"
)

type editIntent int

const (
	intentGeneric editIntent = iota
	intentFix
	intentContinuation
)

func classifyEditIntent(query string) editIntent {
	q := strings.ToLower(query)
	if strings.HasPrefix(q, "fix") || strings.Contains(q, "fix the") || strings.Contains(q, "issue in this note") {
		return intentFix
	}
	for _, kw := range []string{"continue", "finish", "keep going", "write more", "add more", "more detail", "expand"} {
		if strings.Contains(q, kw) {
			return intentContinuation
		}
	}
	return intentGeneric
}

func viewPrompt(query string, meta *SpaceFile, processed string, truncated bool) string {
	var b strings.Builder

	b.WriteString("You are analyzing a file on behalf of a user.\n\n")
	fmt.Fprintf(&b, "User request: %s\n\n", query)
	fmt.Fprintf(&b, "File name: %s (type: %s)\n", meta.FileName, meta.FileType)
	if meta.IsNote {
		b.WriteString("This file is an editable note document. Line numbers are shown before each line.\n")
	}
	if truncated {
		b.WriteString("Note: the file content shown below was truncated. If you need the rest to answer, request more context.\n")
	}
	b.WriteString("\nFile content:\n")
	b.WriteString(processed)
	b.WriteString("\n\n")

	b.WriteString(`Decide how to respond. Your options:
- provide_summary: you can answer the user's request from the content shown. Put your answer in parameters.summary.
- needs_more_context: the truncated content is insufficient. Set parameters.next_chunk_start to the character offset you need.
`)
	if meta.IsNote {
		b.WriteString("- fix_note_issue: the note itself contains a problem the user asked about (broken structure, wrong content). Describe the problem in parameters.fix_description.\n")
	}

	b.WriteString(`
Respond with YAML only:

` + "```yaml" + `
thinking: <one sentence on what you saw and why you chose the action>
action: <provide_summary | needs_more_context` + fixOption(meta.IsNote) + `>
parameters:
  summary: <your answer, when providing a summary>
  next_chunk_start: <offset, when more context is needed>
  fix_description: <problem description, when fixing>
` + "```\n")

	return b.String()
}

func fixOption(isNote bool) string {
	if isNote {
		return " | fix_note_issue"
	}
	return ""
}

func editPrompt(query, processed string, intent editIntent) string {
	var b strings.Builder

	b.WriteString("You are editing a note document stored as a JSON block tree.\n\n")
	fmt.Fprintf(&b, "User request: %s\n\n", query)

	switch intent {
	case intentFix:
		b.WriteString("The user reported a problem with this note. Repair the smallest region that resolves it and leave everything else untouched.\n\n")
	case intentContinuation:
		b.WriteString("The user wants the note continued. Append new blocks that carry on from where the existing content stops, matching its tone and structure.\n\n")
	default:
		b.WriteString("Apply the requested change with the smallest edit that satisfies it.\n\n")
	}

	b.WriteString("Current note content, with line numbers:\n")
	b.WriteString(processed)
	b.WriteString("\n\n")

	b.WriteString("Every block in the document follows this schema:\n")
	b.WriteString(note.SchemaExample)
	b.WriteString("\n\n")

	b.WriteString(`Choose exactly one action:

1. append: add new blocks at the end of the document.
   parameters.modified_content must be a JSON array of complete new blocks.

2. replace_snippet: replace a region of the document.
   parameters.modified_content must use this exact format, where X and Y are
   line numbers from the numbered content above:

` + patch.SnippetFormatExample + `

   Lines X through Y, both inclusive, are replaced with the UPDATED text. When you replace a whole block, keep its id so the block
   can be matched even if line numbers drift.

3. needs_more_context: you cannot make the edit safely from what is shown.

Rules:
- New blocks need fresh unique ids; existing blocks keep theirs.
- The document must remain valid JSON after your edit.
- Do not include line numbers inside modified_content.

Respond with YAML only:

` + "```yaml" + `
thinking: <one sentence on your plan>
action: <append | replace_snippet | needs_more_context>
parameters:
  modified_content: |
    <the new content, per the chosen action>
  reason: <one sentence describing the change for the user>
` + "```\n")

	return b.String()
}

func editRetryPrompt(query, processed, previousResponse string, applyErr error) string {
	var b strings.Builder

	b.WriteString("Your previous edit to a note document could not be applied.\n\n")
	fmt.Fprintf(&b, "User request: %s\n\n", query)
	b.WriteString("Current note content, with line numbers:\n")
	b.WriteString(processed)
	b.WriteString("\n\nYour previous response:\n")
	b.WriteString(previousResponse)
	fmt.Fprintf(&b, "\n\nWhy it failed: %v\n\n", applyErr)

	b.WriteString(`Produce a corrected edit. Remember:
- append: modified_content is a JSON array of complete new blocks.
- replace_snippet: modified_content uses this exact format:

` + patch.SnippetFormatExample + `

- The UPDATED section must be valid JSON in place, never include line numbers,
  and existing block ids must be preserved.

Respond with YAML only, in the same format as before:

` + "```yaml" + `
thinking: <what went wrong and how this attempt fixes it>
action: <append | replace_snippet | needs_more_context>
parameters:
  modified_content: |
    <corrected content>
  reason: <one sentence describing the change>
` + "```\n")

	return b.String()
}

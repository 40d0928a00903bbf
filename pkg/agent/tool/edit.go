package tool

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/note"
	"note-agent-be/pkg/agent/patch"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/llm"
	"note-agent-be/pkg/utils"
)

// VirtualPathPrefix is where edited documents land. Edits never overwrite
// the source object.
const VirtualPathPrefix = "virtual/"

type editResponse struct {
	Thinking   string `yaml:"thinking"`
	Action     string `yaml:"action"`
	Parameters struct {
		ModifiedContent string `yaml:"modified_content"`
		Reason          string `yaml:"reason"`
	} `yaml:"parameters"`
}

func parseEditResponse(raw string) (patch.Proposal, string, error) {
	var resp editResponse
	if err := yaml.Unmarshal([]byte(utils.ExtractYAMLBlock(raw)), &resp); err != nil {
		return patch.Proposal{}, "", fmt.Errorf("edit response is not valid YAML: %w", err)
	}

	reason := resp.Parameters.Reason
	if reason == "" {
		reason = "No explanation provided"
	}
	return patch.Proposal{
		Action:  patch.Action(resp.Action),
		Payload: resp.Parameters.ModifiedContent,
		Reason:  reason,
	}, reason, nil
}

// handleEdit runs one edit round against a note document: prompt the model
// for a proposal, apply it through the patch engine, and on a malformed
// proposal re-prompt exactly once before giving up. A successful result is
// uploaded to the virtual path, never over the original.
func (t *FileTool) handleEdit(ctx context.Context, sess *session.Session, meta *SpaceFile, content []byte, query string) *Result {
	doc, err := note.ParseDocument(content)
	if err != nil {
		return t.failure(nil, meta.Id, "Invalid note format: not valid JSON")
	}

	sess.Emit(event.Event{Type: event.TypeFileEditStart, FileId: meta.Id})

	// The completion event always fires, but only a clean run leaves its
	// Error empty. Consumers use that to tell real edits from aborted ones.
	editFailed := func(msg string) *Result {
		sess.Emit(event.Event{Type: event.TypeFileEditComplete, FileId: meta.Id, Error: msg})
		return t.failure(nil, meta.Id, msg)
	}

	processed := note.NumberLines(content)
	intent := classifyEditIntent(query)

	raw, err := t.provider.Generate(ctx, editPrompt(query, processed, intent), llm.WithTemperature(0.1))
	if err != nil {
		return editFailed(fmt.Sprintf("Error editing file: %v", err))
	}

	proposal, reason, err := parseEditResponse(raw)
	if err != nil {
		return editFailed(fmt.Sprintf("Error editing file: %v", err))
	}

	if proposal.Action == patch.ActionNeedsMoreContext {
		return editFailed("More context needed to edit the file")
	}

	updated, applyErr := patch.Apply(doc, proposal)
	if applyErr != nil {
		// One bounded retry: show the model its own response plus the
		// failure and re-validate. A second failure ends this invocation.
		t.logger.Printf("[FILE-TOOL] patch failed, retrying once: %v", applyErr)
		sess.Emit(event.Event{
			Type:    event.TypeFileEditRetry,
			Message: "Retrying edit with corrected format instructions",
			FileId:  meta.Id,
			Error:   applyErr.Error(),
		})

		retryRaw, err := t.provider.Generate(ctx, editRetryPrompt(query, processed, raw, applyErr), llm.WithTemperature(0.1))
		if err != nil {
			return editFailed(fmt.Sprintf("Error editing file: %v", err))
		}

		retryProposal, retryReason, err := parseEditResponse(retryRaw)
		if err != nil {
			return editFailed(fmt.Sprintf("Failed to apply edit after retry: %v", applyErr))
		}

		updated, err = patch.Apply(doc, retryProposal)
		if err != nil {
			return editFailed(fmt.Sprintf("Failed to apply edit after retry: %v", err))
		}
		reason = retryReason
		t.logger.Printf("[FILE-TOOL] recovered from malformed edit with retry")
	}

	rendered, err := updated.Render()
	if err != nil {
		return editFailed(fmt.Sprintf("Error editing file: %v", err))
	}

	virtualPath := VirtualPathPrefix + meta.FilePath
	if err := t.storage.Upload(ctx, t.bucket, virtualPath, rendered); err != nil {
		t.logger.Printf("[FILE-TOOL] upload to %s failed: %v", virtualPath, err)
		return editFailed("Failed to upload updated file content")
	}

	sess.Emit(event.Event{Type: event.TypeFileEditComplete, FileId: meta.Id})
	return &Result{
		ToolName:   ToolName,
		ResultType: "file_edit",
		FileId:     meta.Id,
		Payload: map[string]interface{}{
			"success": true,
			"message": "File updated successfully",
			"changes": reason,
			"diff":    patch.Summarize(doc, updated),
		},
	}
}

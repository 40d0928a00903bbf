// Package tool implements the file/note interaction tool the orchestration
// loop can invoke: viewing any file, summarizing it, and applying
// model-proposed edits to note documents through the patch engine.
package tool

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/note"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/llm"
	"note-agent-be/pkg/utils"
)

const (
	// ToolName is how this tool appears in action history and prompts.
	ToolName = "file_interaction"

	// DefaultMaxViewChars caps how much content a single view round may
	// hand to the model.
	DefaultMaxViewChars = 35000
)

// FileTool fetches a file, asks the model what to do with it, and applies
// note edits via the patch engine. One value serves all sessions; per-call
// state lives on the stack.
type FileTool struct {
	files        FileStore
	storage      ObjectStorage
	provider     llm.LLMProvider
	bucket       string
	maxViewChars int
	logger       *log.Logger
}

func NewFileTool(files FileStore, storage ObjectStorage, provider llm.LLMProvider, bucket string, logger *log.Logger) *FileTool {
	return &FileTool{
		files:        files,
		storage:      storage,
		provider:     provider,
		bucket:       bucket,
		maxViewChars: DefaultMaxViewChars,
		logger:       logger,
	}
}

// WithMaxViewChars overrides the view-content ceiling.
func (t *FileTool) WithMaxViewChars(n int) *FileTool {
	if n > 0 {
		t.maxViewChars = n
	}
	return t
}

func (t *FileTool) Name() string {
	return ToolName
}

// failure wraps an error message in the tool's structured result shape.
func (t *FileTool) failure(params map[string]interface{}, fileId, msg string) *Result {
	return &Result{
		ToolName:   ToolName,
		ResultType: "tool_execution",
		Parameters: params,
		FileId:     fileId,
		Payload:    map[string]interface{}{"success": false, "error": msg},
	}
}

// Invoke runs one file interaction. The session's active file id always
// wins over any id in the parameters; failures come back as structured
// results, never as errors.
func (t *FileTool) Invoke(ctx context.Context, sess *session.Session, params map[string]interface{}) (*Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	fileId := sess.ActiveFileId
	if fileId == "" {
		fileId, _ = params["file_id"].(string)
	}
	if fileId == "" {
		sess.Emit(event.Event{Type: event.TypeFileMissingId, Message: "No file ID provided for file interaction"})
		return t.failure(params, "", "No file ID provided"), nil
	}

	sess.Emit(event.Event{Type: event.TypeFileLookupStart, Message: "Looking up file information", FileId: fileId})

	meta, err := t.files.GetFile(ctx, fileId)
	if err != nil || meta == nil {
		if err != nil {
			t.logger.Printf("[FILE-TOOL] metadata lookup failed for %s: %v", fileId, err)
		}
		sess.Emit(event.Event{
			Type:    event.TypeFileNotFound,
			Message: fmt.Sprintf("File with ID %s not found", fileId),
			FileId:  fileId,
		})
		return t.failure(params, fileId, fmt.Sprintf("File with ID %s not found", fileId)), nil
	}

	sess.Emit(event.Event{
		Type:     event.TypeFileFound,
		Message:  fmt.Sprintf("Found file: %s", meta.FileName),
		FileId:   fileId,
		FileName: meta.FileName,
		IsNote:   meta.IsNote,
	})

	sess.Emit(event.Event{
		Type:     event.TypeFileDownloadStart,
		Message:  "Downloading file content",
		FileId:   fileId,
		FileName: meta.FileName,
	})

	content, err := t.storage.Download(ctx, t.bucket, meta.FilePath)
	if err != nil {
		storageErr := &StorageError{Op: "download", Path: meta.FilePath, Err: err}
		sess.Emit(event.Event{
			Type:    event.TypeFileDownloadError,
			Message: fmt.Sprintf("Error downloading file: %v", err),
			FileId:  fileId,
			Error:   err.Error(),
		})
		return t.failure(params, fileId, storageErr.Error()), nil
	}

	sess.Emit(event.Event{
		Type:     event.TypeFileDownloadComplete,
		Message:  "Successfully downloaded file content",
		FileId:   fileId,
		FileName: meta.FileName,
		Size:     len(content),
	})

	action, _ := params["action"].(string)
	if action == "" {
		action = "view"
	}

	sess.Emit(event.Event{
		Type:       event.TypeFileActionDetermined,
		Message:    fmt.Sprintf("File action determined: %s", action),
		FileId:     fileId,
		FileName:   meta.FileName,
		FileAction: action,
		IsNote:     meta.IsNote,
	})

	switch {
	case action == "view" || action == "read":
		res := t.handleView(ctx, sess, meta, content)
		res.Parameters = params
		if meta.IsNote && res.Payload["fix_result"] != nil {
			sess.Emit(event.Event{
				Type:     event.TypeFileFixApplied,
				Message:  "Automatic fix was applied based on detected issue in note",
				FileId:   fileId,
				FileName: meta.FileName,
			})
		}
		return res, nil

	case meta.IsNote && (action == "edit" || action == "append" || action == "replace_snippet"):
		res := t.handleEdit(ctx, sess, meta, content, sess.Query)
		res.Parameters = params
		return res, nil

	case !meta.IsNote && (action == "edit" || action == "append" || action == "replace_snippet"):
		sess.Emit(event.Event{
			Type:       event.TypeFileActionInvalid,
			Message:    "Only note files can be edited",
			FileId:     fileId,
			FileName:   meta.FileName,
			FileAction: action,
			IsNote:     meta.IsNote,
		})
		return t.failure(params, fileId, "Only note files can be edited"), nil

	default:
		sess.Emit(event.Event{
			Type:       event.TypeFileActionUnknown,
			Message:    fmt.Sprintf("Unknown file action: %s", action),
			FileId:     fileId,
			FileName:   meta.FileName,
			FileAction: action,
		})
		return t.failure(params, fileId, fmt.Sprintf("Unknown action: %s", action)), nil
	}
}

type viewResponse struct {
	Thinking   string `yaml:"thinking"`
	Action     string `yaml:"action"`
	Parameters struct {
		Summary        string `yaml:"summary"`
		NextChunkStart int    `yaml:"next_chunk_start"`
		FixDescription string `yaml:"fix_description"`
	} `yaml:"parameters"`
}

// handleView summarizes a file for the user's query. For notes the model
// may flag an issue, which triggers a nested edit with a synthesized fix
// instruction; summary and fix outcome are returned together.
func (t *FileTool) handleView(ctx context.Context, sess *session.Session, meta *SpaceFile, content []byte) *Result {
	sess.Emit(event.Event{
		Type:     event.TypeFileViewStart,
		Message:  fmt.Sprintf("Starting to process file for viewing: %s", meta.FileName),
		FileId:   meta.Id,
		FileName: meta.FileName,
	})

	truncated := false
	if len(content) > t.maxViewChars {
		sess.Emit(event.Event{
			Type:    event.TypeFileTruncated,
			Message: fmt.Sprintf("File content truncated due to size (%d chars)", len(content)),
			FileId:  meta.Id,
			Size:    len(content),
		})
		content = content[:t.maxViewChars]
		truncated = true
	}

	var processed string
	if meta.IsNote {
		processed = note.NumberLines(content)
	} else {
		processed = string(content)
	}
	sess.Emit(event.Event{
		Type:     event.TypeFileProcessed,
		Message:  "File content processed",
		FileId:   meta.Id,
		FileName: meta.FileName,
		IsNote:   meta.IsNote,
	})

	sess.Emit(event.Event{
		Type:     event.TypeFileSummaryStart,
		Message:  "Starting to generate file summary",
		FileId:   meta.Id,
		FileName: meta.FileName,
	})

	raw, err := t.provider.Generate(ctx, viewPrompt(sess.Query, meta, processed, truncated), llm.WithTemperature(0.1))
	if err != nil {
		sess.Emit(event.Event{
			Type:    event.TypeFileSummaryError,
			Message: fmt.Sprintf("Error generating file summary: %v", err),
			FileId:  meta.Id,
			Error:   err.Error(),
		})
		return t.failure(nil, meta.Id, fmt.Sprintf("Error generating file summary: %v", err))
	}

	sess.Emit(event.Event{
		Type:     event.TypeFileSummaryReceived,
		Message:  "Received file summary from language model",
		FileId:   meta.Id,
		FileName: meta.FileName,
	})

	var resp viewResponse
	if err := yaml.Unmarshal([]byte(utils.ExtractYAMLBlock(raw)), &resp); err != nil {
		sess.Emit(event.Event{
			Type:    event.TypeFileSummaryError,
			Message: fmt.Sprintf("Error parsing file summary: %v", err),
			FileId:  meta.Id,
			Error:   err.Error(),
		})
		return t.failure(nil, meta.Id, fmt.Sprintf("Error generating file summary: %v", err))
	}

	sess.Emit(event.Event{
		Type:       event.TypeFileSummaryParsed,
		Message:    fmt.Sprintf("Parsed file summary response: %s", resp.Action),
		FileId:     meta.Id,
		FileName:   meta.FileName,
		FileAction: resp.Action,
	})

	switch {
	case resp.Action == "needs_more_context":
		// Pagination past the first chunk is not implemented; the caller
		// gets what we have plus an explicit note.
		sess.Emit(event.Event{
			Type:     event.TypeFileMoreContext,
			Message:  "More file context needed",
			FileId:   meta.Id,
			FileName: meta.FileName,
		})
		return &Result{
			ToolName:   ToolName,
			ResultType: "tool_execution",
			FileId:     meta.Id,
			Payload: map[string]interface{}{
				"success":     true,
				"content":     processed,
				"summary":     "More context was requested but not provided in this version",
				"is_complete": false,
			},
		}

	case resp.Action == "fix_note_issue" && meta.IsNote:
		fix := resp.Parameters.FixDescription
		if fix == "" {
			fix = "No fix description provided"
		}
		sess.Emit(event.Event{
			Type:     event.TypeFileIssueDetected,
			Message:  "Issue detected in note file, attempting to fix",
			FileId:   meta.Id,
			FileName: meta.FileName,
			Content:  fix,
		})

		editRes := t.handleEdit(ctx, sess, meta, content,
			fmt.Sprintf("Fix the following issue in this note: %s", fix))

		summary := resp.Parameters.Summary
		if summary == "" {
			summary = "No summary provided"
		}
		return &Result{
			ToolName:   ToolName,
			ResultType: "tool_execution",
			FileId:     meta.Id,
			Payload: map[string]interface{}{
				"success":     true,
				"content":     processed,
				"summary":     fmt.Sprintf("%s\n\nFix attempted: %s", summary, fix),
				"fix_result":  editRes.Payload,
				"is_complete": true,
			},
		}

	default:
		summary := resp.Parameters.Summary
		if summary == "" {
			summary = "No summary provided"
		}
		sess.Emit(event.Event{
			Type:     event.TypeFileSummaryComplete,
			Message:  "File summary completed successfully",
			FileId:   meta.Id,
			FileName: meta.FileName,
			Size:     len(summary),
		})
		return &Result{
			ToolName:   ToolName,
			ResultType: "tool_execution",
			FileId:     meta.Id,
			Payload: map[string]interface{}{
				"success":     true,
				"content":     processed,
				"summary":     summary,
				"is_complete": true,
			},
		}
	}
}

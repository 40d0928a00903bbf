package event

import "time"

// Type identifies one kind of progress event. The vocabulary is closed:
// consumers can switch over these constants exhaustively.
type Type string

const (
	TypeDecisionStart        Type = "decision_start"
	TypeDecision             Type = "decision"
	TypeReasoning            Type = "reasoning"
	TypeToolExecutionStart   Type = "tool_execution_start"
	TypeToolExecutionError   Type = "tool_execution_error"
	TypeToolComplete         Type = "tool_complete"
	TypeForcedFinish         Type = "forced_finish"
	TypeFinishStart          Type = "finish_start"
	TypeFlowComplete         Type = "flow_complete"
	TypeRagComplete          Type = "rag_complete"
	TypeFileMissingId        Type = "file_missing_id"
	TypeFileLookupStart      Type = "file_lookup_start"
	TypeFileNotFound         Type = "file_not_found"
	TypeFileFound            Type = "file_found"
	TypeFileDownloadStart    Type = "file_download_start"
	TypeFileDownloadComplete Type = "file_download_complete"
	TypeFileDownloadError    Type = "file_download_error"
	TypeFileActionDetermined Type = "file_action_determined"
	TypeFileActionInvalid    Type = "file_action_invalid"
	TypeFileActionUnknown    Type = "file_action_unknown"
	TypeFileViewStart        Type = "file_view_start"
	TypeFileTruncated        Type = "file_content_truncated"
	TypeFileProcessed        Type = "file_content_processed"
	TypeFileSummaryReceived  Type = "file_summary_received"
	TypeFileSummaryStart     Type = "file_summary_start"
	TypeFileSummaryParsed    Type = "file_summary_parsed"
	TypeFileSummaryComplete  Type = "file_summary_complete"
	TypeFileSummaryError     Type = "file_summary_error"
	TypeFileIssueDetected    Type = "file_issue_detected"
	TypeFileFixApplied       Type = "automatic_note_fix_applied"
	TypeFileMoreContext      Type = "file_more_context_needed"
	TypeFileEditStart        Type = "file_edit_start"
	TypeFileEditRetry        Type = "file_edit_retry"
	TypeFileEditComplete     Type = "file_edit_complete"
)

// Event is one entry in a session's progress stream. Only the fields that
// apply to the variant in Type are set; the rest stay zero.
type Event struct {
	Type       Type      `json:"type"`
	Message    string    `json:"message,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	Content    string    `json:"content,omitempty"`
	Query      string    `json:"query,omitempty"`
	Tool       string    `json:"tool,omitempty"`
	FileId     string    `json:"file_id,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	FileAction string    `json:"action,omitempty"`
	IsNote     bool      `json:"is_note,omitempty"`
	Error      string    `json:"error,omitempty"`
	Size       int       `json:"size,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"note-agent-be/pkg/agent/session"
)

// SpaceFile is the metadata record for one stored file.
type SpaceFile struct {
	Id       string
	FileName string
	FileType string
	FilePath string
	IsNote   bool
	SpaceId  uuid.UUID
	UserId   uuid.UUID
}

// FileStore resolves file metadata. A missing file returns (nil, nil).
type FileStore interface {
	GetFile(ctx context.Context, fileId string) (*SpaceFile, error)
}

// ObjectStorage moves raw file bytes in and out of a bucket.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Upload(ctx context.Context, bucket, path string, data []byte) error
}

// StorageError wraps a fetch or upload failure. Terminal for the current
// tool invocation only; the session keeps going.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Result is the structured outcome of one tool invocation. Failures are
// expressed here, never as panics or raw errors to the loop.
type Result struct {
	ToolName   string
	ResultType string // "tool_execution" | "file_edit" | "error"
	Parameters map[string]interface{}
	Payload    map[string]interface{}
	Message    string
	Error      string
	FileId     string
}

// Tool is the invocation contract the orchestration loop drives.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, sess *session.Session, params map[string]interface{}) (*Result, error)
}

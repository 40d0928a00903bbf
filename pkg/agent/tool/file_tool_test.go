package tool

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/llm"
)

type fakeFiles struct {
	files map[string]*SpaceFile
	err   error
}

func (f *fakeFiles) GetFile(ctx context.Context, fileId string) (*SpaceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.files[fileId], nil
}

type fakeStorage struct {
	objects     map[string][]byte
	downloadErr error
	uploadErr   error
	uploads     map[string][]byte
}

func (s *fakeStorage) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, path string, data []byte) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[path] = data
	return nil
}

// queueProvider hands out scripted responses in order and records the
// prompts it saw.
type queueProvider struct {
	responses []string
	err       error
	prompts   []string
}

var _ llm.LLMProvider = &queueProvider{}

func (p *queueProvider) next(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *queueProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.next(history[len(history)-1].Content)
}

func (p *queueProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.next(prompt)
}

func (p *queueProvider) GenerateStream(ctx context.Context, prompt string, onDelta func(string), opts ...llm.Option) (string, error) {
	resp, err := p.next(prompt)
	if err == nil && onDelta != nil {
		onDelta(resp)
	}
	return resp, err
}

const noteContent = `[{"id":"b1","type":"paragraph","content":[{"type":"text","text":"hello"}],"children":[]}]`

const appendResponse = "```yaml" + `
thinking: adding a block at the end
action: append
parameters:
  modified_content: |
    [{"id":"b9","type":"paragraph","content":[{"type":"text","text":"more"}],"children":[]}]
  reason: Added a closing paragraph
` + "```"

const summaryResponse = "```yaml" + `
thinking: the file answers the question
action: provide_summary
parameters:
  summary: The note greets the reader.
` + "```"

func noteFixture() (*fakeFiles, *fakeStorage) {
	files := &fakeFiles{files: map[string]*SpaceFile{
		"f1": {Id: "f1", FileName: "note.json", FileType: "note", FilePath: "spaces/s1/note.json", IsNote: true},
		"f2": {Id: "f2", FileName: "report.pdf", FileType: "pdf", FilePath: "spaces/s1/report.pdf", IsNote: false},
	}}
	storage := &fakeStorage{objects: map[string][]byte{
		"spaces/s1/note.json":  []byte(noteContent),
		"spaces/s1/report.pdf": []byte("binary-ish report text"),
	}}
	return files, storage
}

func newTestTool(files FileStore, storage ObjectStorage, provider llm.LLMProvider) *FileTool {
	return NewFileTool(files, storage, provider, "space-files", log.New(log.Writer(), "", 0))
}

func newSession(query, fileId string) *session.Session {
	sess := session.New(query, event.NewStream())
	sess.ActiveFileId = fileId
	return sess
}

func drainEvents(sess *session.Session) []event.Event {
	sess.Events.Close()
	var out []event.Event
	for ev := range sess.Events.Events() {
		out = append(out, ev)
	}
	return out
}

func eventCount(events []event.Event, typ event.Type) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestInvokeMissingFileId(t *testing.T) {
	files, storage := noteFixture()
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("view the file", "")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "No file ID provided", res.Payload["error"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileMissingId))
}

func TestInvokeFileNotFound(t *testing.T) {
	files, storage := noteFixture()
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("view the file", "ghost")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "File with ID ghost not found", res.Payload["error"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileNotFound))
}

func TestInvokeActiveFileIdWinsOverParams(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{summaryResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("what does my note say", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"file_id": "f2"})
	require.NoError(t, err)
	assert.Equal(t, "f1", res.FileId)
}

func TestInvokeDownloadError(t *testing.T) {
	files, storage := noteFixture()
	storage.downloadErr = errors.New("bucket unreachable")
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("view", "f1")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Contains(t, res.Payload["error"], "bucket unreachable")

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileDownloadError))
}

func TestInvokeViewProducesSummary(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{summaryResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("what does my note say", "f1")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Payload["success"])
	assert.Equal(t, "The note greets the reader.", res.Payload["summary"])
	assert.Equal(t, true, res.Payload["is_complete"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileViewStart))
	assert.Equal(t, 1, eventCount(events, event.TypeFileSummaryComplete))
	assert.Zero(t, eventCount(events, event.TypeFileTruncated))
}

func TestInvokeViewTruncatesLargeContent(t *testing.T) {
	files, storage := noteFixture()
	storage.objects["spaces/s1/report.pdf"] = []byte(strings.Repeat("x", 200))
	provider := &queueProvider{responses: []string{summaryResponse}}
	tl := newTestTool(files, storage, provider).WithMaxViewChars(100)
	sess := newSession("summarize the report", "f2")

	_, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileTruncated))
	// The model only saw the capped prefix.
	require.NotEmpty(t, provider.prompts)
	assert.NotContains(t, provider.prompts[0], strings.Repeat("x", 101))
}

func TestInvokeViewNeedsMoreContext(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{"```yaml\nthinking: cut off\naction: needs_more_context\nparameters:\n  next_chunk_start: 35000\n```"}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("summarize everything", "f1")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["is_complete"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileMoreContext))
}

func TestInvokeViewFixesNoteIssue(t *testing.T) {
	files, storage := noteFixture()
	fixResponse := "```yaml" + `
thinking: the note has a dangling sentence
action: fix_note_issue
parameters:
  summary: The note greets the reader but trails off.
  fix_description: The last paragraph is incomplete.
` + "```"
	provider := &queueProvider{responses: []string{fixResponse, appendResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("does my note look right", "f1")

	res, err := tl.Invoke(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Payload["success"])
	require.NotNil(t, res.Payload["fix_result"])
	assert.Contains(t, res.Payload["summary"], "Fix attempted")

	// The nested edit prompt carries the synthesized fix instruction.
	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[1], "Fix the following issue in this note: The last paragraph is incomplete.")

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileIssueDetected))
	assert.Equal(t, 1, eventCount(events, event.TypeFileFixApplied))
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditStart))
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditComplete))
}

func TestInvokeEditAppend(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{appendResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("add a closing paragraph", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, "file_edit", res.ResultType)
	assert.Equal(t, true, res.Payload["success"])
	assert.Equal(t, "File updated successfully", res.Payload["message"])
	assert.Equal(t, "Added a closing paragraph", res.Payload["changes"])

	uploaded, ok := storage.uploads["virtual/spaces/s1/note.json"]
	require.True(t, ok, "edited content goes to the virtual path")
	assert.Contains(t, string(uploaded), `"id":"b9"`)
	assert.Contains(t, string(uploaded), `"id":"b1"`)

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditStart))
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditComplete))
	assert.Zero(t, eventCount(events, event.TypeFileEditRetry))
}

func TestInvokeEditRetriesOnceOnMalformedSnippet(t *testing.T) {
	files, storage := noteFixture()
	malformed := "```yaml" + `
thinking: replacing the paragraph
action: replace_snippet
parameters:
  modified_content: |
    this is missing every marker
  reason: Tried to replace a block
` + "```"
	provider := &queueProvider{responses: []string{malformed, appendResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("rewrite my note", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, true, res.Payload["success"])

	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[1], "could not be applied")
	assert.Contains(t, provider.prompts[1], "this is missing every marker")

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditRetry))
}

func TestInvokeEditSecondFailureIsTerminal(t *testing.T) {
	files, storage := noteFixture()
	malformed := "```yaml" + `
thinking: bad again
action: replace_snippet
parameters:
  modified_content: still no markers
  reason: nope
` + "```"
	provider := &queueProvider{responses: []string{malformed, malformed}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("rewrite my note", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Contains(t, res.Payload["error"], "Failed to apply edit after retry")
	assert.Empty(t, provider.responses, "both scripted responses consumed")
	assert.Empty(t, storage.uploads)

	// The completion event still fires but carries the failure, so nothing
	// downstream treats the file as changed.
	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditComplete))
	for _, ev := range events {
		if ev.Type == event.TypeFileEditComplete {
			assert.Contains(t, ev.Error, "Failed to apply edit after retry")
		}
	}
}

func TestInvokeEditCleanCompletionHasNoError(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{appendResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("add a closing paragraph", "f1")

	_, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileEditComplete))
	for _, ev := range events {
		if ev.Type == event.TypeFileEditComplete {
			assert.Empty(t, ev.Error)
		}
	}
}

func TestInvokeEditNeedsMoreContext(t *testing.T) {
	files, storage := noteFixture()
	provider := &queueProvider{responses: []string{"```yaml\nthinking: unclear\naction: needs_more_context\nparameters:\n  reason: ambiguous request\n```"}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("change it", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "More context needed to edit the file", res.Payload["error"])
}

func TestInvokeEditRejectsNonNote(t *testing.T) {
	files, storage := noteFixture()
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("edit the report", "f2")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "Only note files can be edited", res.Payload["error"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileActionInvalid))
}

func TestInvokeEditRejectsInvalidNoteJSON(t *testing.T) {
	files, storage := noteFixture()
	storage.objects["spaces/s1/note.json"] = []byte("definitely not json")
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("edit my note", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "Invalid note format: not valid JSON", res.Payload["error"])
}

func TestInvokeEditUploadFailure(t *testing.T) {
	files, storage := noteFixture()
	storage.uploadErr = errors.New("storage write denied")
	provider := &queueProvider{responses: []string{appendResponse}}
	tl := newTestTool(files, storage, provider)
	sess := newSession("add a paragraph", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "edit"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "Failed to upload updated file content", res.Payload["error"])
}

func TestInvokeUnknownAction(t *testing.T) {
	files, storage := noteFixture()
	tl := newTestTool(files, storage, &queueProvider{})
	sess := newSession("do something", "f1")

	res, err := tl.Invoke(context.Background(), sess, map[string]interface{}{"action": "dance"})
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["success"])
	assert.Equal(t, "Unknown action: dance", res.Payload["error"])

	events := drainEvents(sess)
	assert.Equal(t, 1, eventCount(events, event.TypeFileActionUnknown))
}

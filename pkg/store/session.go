package store

import "time"

// Session tracks an agent run that is currently executing for a chat session.
// It exists so the service layer can reject a second query on the same chat
// session while the first one is still streaming.
type Session struct {
	ID        string    `json:"id"` // ChatSessionID
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

const (
	StateRunning  = "RUNNING"
	StateFinished = "FINISHED"
)

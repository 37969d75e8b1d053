// Package history records an append-only ledger of sessions and step
// executions for observability. Resume decisions never consult the
// ledger; the JSON state file remains the single source of truth for
// skip logic.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("session not found")

// Session is one orchestrator invocation.
type Session struct {
	ID         string     `json:"id"`
	ConfigHash string     `json:"config_hash"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StepExecution is one attempted step within a session.
type StepExecution struct {
	ID         int64      `json:"id"`
	SessionID  string     `json:"session_id"`
	RunID      string     `json:"run_id"`
	StepID     string     `json:"step_id"`
	Status     string     `json:"status"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMS int        `json:"duration_ms"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Store defines the persistence operations for the history ledger.
type Store interface {
	BeginSession(ctx context.Context, s *Session) error
	FinishSession(ctx context.Context, id, status string) error
	RecordStep(ctx context.Context, e *StepExecution) error
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
	ListSteps(ctx context.Context, sessionID string) ([]*StepExecution, error)
	Close() error
}

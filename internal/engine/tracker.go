package engine

import (
	"sync"

	"github.com/foldworks/foldpipe/internal/model"
)

// RunProgress is the live view of one run.
type RunProgress struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CurrentStep string `json:"current_step,omitempty"`
	StepsDone   int    `json:"steps_done"`
	StepsTotal  int    `json:"steps_total"`
}

// Snapshot is a point-in-time view of the session for the status API.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	Status    string        `json:"status"`
	Runs      []RunProgress `json:"runs"`
}

// Tracker holds live session progress behind a mutex. The executor is
// the only writer; the status server reads snapshots concurrently.
type Tracker struct {
	mu        sync.RWMutex
	sessionID string
	status    string
	order     []string
	runs      map[string]*RunProgress
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		status: model.StatusPending,
		runs:   make(map[string]*RunProgress),
	}
}

// Begin marks the session started.
func (t *Tracker) Begin(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = sessionID
	t.status = model.StatusRunning
}

// Finish records the session's final status.
func (t *Tracker) Finish(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// StartRun registers a run and marks it running.
func (t *Tracker) StartRun(runID string, totalSteps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.runs[runID]; !ok {
		t.order = append(t.order, runID)
	}
	t.runs[runID] = &RunProgress{ID: runID, Status: model.StatusRunning, StepsTotal: totalSteps}
}

// StepStarted records the step a run is currently executing.
func (t *Tracker) StepStarted(runID, stepID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[runID]; ok {
		r.CurrentStep = stepID
	}
}

// StepFinished clears the current step and counts successes.
func (t *Tracker) StepFinished(runID, stepID string, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[runID]
	if !ok || r.CurrentStep != stepID {
		return
	}
	r.CurrentStep = ""
	if status == model.StatusSucceeded {
		r.StepsDone++
	}
}

// FinishRun records a run's final status, honoring the transition table.
func (t *Tracker) FinishRun(runID, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[runID]; ok && model.ValidTransition(r.Status, status) {
		r.Status = status
		r.CurrentStep = ""
	}
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := Snapshot{
		SessionID: t.sessionID,
		Status:    t.status,
		Runs:      make([]RunProgress, 0, len(t.order)),
	}
	for _, id := range t.order {
		snap.Runs = append(snap.Runs, *t.runs[id])
	}
	return snap
}

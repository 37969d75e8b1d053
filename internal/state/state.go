// Package state persists pipeline run state: the completion ledger, the
// last failure, and a content hash of the configuration that produced
// them. The state file is the single source of truth for resume
// decisions; there is exactly one writer per process and every write is
// a whole-document rewrite.
package state

import "time"

// PipelineState is the persisted run-state document.
type PipelineState struct {
	LastRun        *time.Time `json:"last_run"`
	ConfigHash     string     `json:"config_hash"`
	CompletedSteps []string   `json:"completed_steps"`
	FailedStep     string     `json:"failed_step"`
	ErrorMessage   string     `json:"error_message"`
}

// Completed reports whether the step id is in the completion ledger.
func (s *PipelineState) Completed(stepID string) bool {
	for _, id := range s.CompletedSteps {
		if id == stepID {
			return true
		}
	}
	return false
}

// Update records the outcome of one step. On success the step joins the
// completion ledger (idempotently), and a matching recorded failure is
// cleared. On failure the step is recorded as the failed step and the
// ledger is left untouched; a failed step is never marked complete.
func (s *PipelineState) Update(stepID string, success bool, errMsg string) {
	if success {
		if !s.Completed(stepID) {
			s.CompletedSteps = append(s.CompletedSteps, stepID)
		}
		if s.FailedStep == stepID {
			s.FailedStep = ""
			s.ErrorMessage = ""
		}
		return
	}
	s.FailedStep = stepID
	s.ErrorMessage = errMsg
}

// ShouldSkip reports whether a step may be skipped on resume: true iff
// resuming and the step is already recorded complete. Explicit skip
// lists are checked by the executor before this.
func (s *PipelineState) ShouldSkip(stepID string, resuming bool) bool {
	return resuming && s.Completed(stepID)
}

// Clean resets the document to its zero state, equivalent to deleting
// the state file.
func (s *PipelineState) Clean() {
	s.LastRun = nil
	s.ConfigHash = ""
	s.CompletedSteps = nil
	s.FailedStep = ""
	s.ErrorMessage = ""
}

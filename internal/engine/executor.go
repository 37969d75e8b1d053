package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foldworks/foldpipe/internal/history"
	"github.com/foldworks/foldpipe/internal/model"
	"github.com/foldworks/foldpipe/internal/state"
)

// StepError reports the step that ended a run.
type StepError struct {
	RunID  string
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExecutorConfig carries the executor's collaborators.
type ExecutorConfig struct {
	Runner    Runner
	States    state.Store
	State     *state.PipelineState
	History   history.Store // nil disables history recording
	Tracker   *Tracker      // nil disables progress tracking
	Logger    *slog.Logger
	SessionID string
	Resume    bool
	SkipSteps []string // base step kinds, matched before the resume ledger
}

// Executor runs step graphs against the shared pipeline state. It is
// the single writer of the state store.
type Executor struct {
	runner    Runner
	states    state.Store
	st        *state.PipelineState
	hist      history.Store
	tracker   *Tracker
	logger    *slog.Logger
	sessionID string
	resume    bool
	skip      map[string]bool
}

// NewExecutor creates an executor over the given pipeline state.
func NewExecutor(cfg ExecutorConfig) *Executor {
	skip := make(map[string]bool, len(cfg.SkipSteps))
	for _, kind := range cfg.SkipSteps {
		skip[kind] = true
	}
	return &Executor{
		runner:    cfg.Runner,
		states:    cfg.States,
		st:        cfg.State,
		hist:      cfg.History,
		tracker:   cfg.Tracker,
		logger:    cfg.Logger,
		sessionID: cfg.SessionID,
		resume:    cfg.Resume,
		skip:      skip,
	}
}

// State exposes the executor's in-memory pipeline state.
func (e *Executor) State() *state.PipelineState { return e.st }

// RunSteps drives one run's steps in order. The first failing step ends
// the run as failed; skipped steps never touch state. Explicit skips
// match the step's base kind, so one --skip-step covers every motif
// scoping of that step.
func (e *Executor) RunSteps(ctx context.Context, runID string, steps []model.Step) (string, error) {
	if e.tracker != nil {
		e.tracker.StartRun(runID, len(steps))
	}

	for _, step := range steps {
		if e.skip[step.Kind] {
			e.logger.Info("skipping step (explicit)", "run", runID, "step", step.ID())
			stepsTotal.WithLabelValues(outcomeSkipped).Inc()
			continue
		}
		if e.st.ShouldSkip(step.ID(), e.resume) {
			e.logger.Info("skipping step (already complete)", "run", runID, "step", step.ID())
			stepsTotal.WithLabelValues(outcomeSkipped).Inc()
			continue
		}

		if err := e.runStep(ctx, runID, step); err != nil {
			if e.tracker != nil {
				e.tracker.FinishRun(runID, model.StatusFailed)
			}
			runsTotal.WithLabelValues(model.StatusFailed).Inc()
			return model.StatusFailed, err
		}
	}

	if e.tracker != nil {
		e.tracker.FinishRun(runID, model.StatusSucceeded)
	}
	runsTotal.WithLabelValues(model.StatusSucceeded).Inc()
	return model.StatusSucceeded, nil
}

func (e *Executor) runStep(ctx context.Context, runID string, step model.Step) error {
	if e.tracker != nil {
		e.tracker.StepStarted(runID, step.ID())
	}
	e.logger.Info("running step", "run", runID, "step", step.ID(), "description", step.Description)
	e.logger.Debug("step command", "step", step.ID(), "argv", step.Command)

	start := time.Now().UTC()
	err := e.runner.Run(ctx, step.Command)
	duration := time.Since(start)
	stepDuration.Observe(duration.Seconds())

	if err != nil {
		e.st.Update(step.ID(), false, err.Error())
		e.persist()
		e.record(ctx, runID, step, model.StatusFailed, err, start, duration)
		stepsTotal.WithLabelValues(outcomeFailed).Inc()
		if e.tracker != nil {
			e.tracker.StepFinished(runID, step.ID(), model.StatusFailed)
		}
		e.logger.Error("step failed", "run", runID, "step", step.ID(), "duration_ms", duration.Milliseconds(), "error", err)
		return &StepError{RunID: runID, StepID: step.ID(), Err: err}
	}

	e.st.Update(step.ID(), true, "")
	e.persist()
	e.record(ctx, runID, step, model.StatusSucceeded, nil, start, duration)
	stepsTotal.WithLabelValues(outcomeSucceeded).Inc()
	if e.tracker != nil {
		e.tracker.StepFinished(runID, step.ID(), model.StatusSucceeded)
	}
	e.logger.Info("step completed", "run", runID, "step", step.ID(), "duration_ms", duration.Milliseconds())
	return nil
}

// persist rewrites the state file. A write failure is logged, not
// fatal: losing one checkpoint only costs a re-run of that step.
func (e *Executor) persist() {
	if err := e.states.Write(e.st); err != nil {
		e.logger.Error("persist state", "error", err)
	}
}

func (e *Executor) record(ctx context.Context, runID string, step model.Step, status string, runErr error, start time.Time, duration time.Duration) {
	if e.hist == nil {
		return
	}

	finished := start.Add(duration)
	exec := &history.StepExecution{
		SessionID:  e.sessionID,
		RunID:      runID,
		StepID:     step.ID(),
		Status:     status,
		DurationMS: int(duration.Milliseconds()),
		StartedAt:  start,
		FinishedAt: &finished,
	}
	if runErr != nil {
		exec.Error = runErr.Error()
		exec.ExitCode = ExitCode(runErr)
	} else {
		zero := 0
		exec.ExitCode = &zero
	}

	if err := e.hist.RecordStep(ctx, exec); err != nil {
		e.logger.Error("record step execution", "step", step.ID(), "error", err)
	}
}

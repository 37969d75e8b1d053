package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foldworks/foldpipe/internal/config"
	"github.com/foldworks/foldpipe/internal/history"
	"github.com/foldworks/foldpipe/internal/model"
	"github.com/foldworks/foldpipe/internal/plan"
	"github.com/foldworks/foldpipe/internal/state"
)

// ErrResumeConflict is returned when a resume is requested but the
// configuration has drifted since the persisted state was written.
var ErrResumeConflict = errors.New("configuration changed since last run")

// Options are the session-level execution switches.
type Options struct {
	Resume      bool
	ForceResume bool
	CleanState  bool
	NoArchive   bool
	SkipSteps   []string
}

// Summary reports how a session went.
type Summary struct {
	SessionID  string
	FailedRuns []string
}

// Failed reports whether any run ended failed.
func (s Summary) Failed() bool { return len(s.FailedRuns) > 0 }

// Pipeline is the session driver: it owns drift detection, the archive
// step, and the prediction and analysis run loops. Runs execute
// strictly sequentially; a failed run never stops the remaining runs.
type Pipeline struct {
	Config         model.CanonicalConfig
	PredictionRuns []model.PredictionRun
	AnalysisRuns   []model.AnalysisRun
	Builder        plan.Builder
	Runner         Runner
	States         state.Store
	History        history.Store // nil disables the history ledger
	Tracker        *Tracker      // nil disables progress tracking
	Logger         *slog.Logger
	Options        Options
}

// Run executes the whole session and returns its summary. An error is
// returned only for session-level faults (resume conflict, state
// persistence); per-run failures are reported through the summary.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	hash := state.ComputeHash(p.Config.Document())

	st := p.States.Read()
	if p.Options.CleanState {
		p.Logger.Info("clearing pipeline state")
		st.Clean()
	}
	if p.Options.Resume && st.ConfigHash != "" && st.ConfigHash != hash && !p.Options.ForceResume {
		return Summary{}, fmt.Errorf("%w: state was written for config %.12s, current config is %.12s (use --force-resume to override)",
			ErrResumeConflict, st.ConfigHash, hash)
	}

	now := time.Now().UTC()
	st.LastRun = &now
	st.ConfigHash = hash
	if err := p.States.Write(st); err != nil {
		return Summary{}, fmt.Errorf("persist state: %w", err)
	}

	summary := Summary{SessionID: model.NewID()}
	if p.Tracker != nil {
		p.Tracker.Begin(summary.SessionID)
	}

	hist := p.History
	if hist != nil {
		sess := &history.Session{
			ID:         summary.SessionID,
			ConfigHash: hash,
			Status:     model.StatusRunning,
			StartedAt:  now,
		}
		if err := hist.BeginSession(ctx, sess); err != nil {
			p.Logger.Warn("history ledger unavailable", "error", err)
			hist = nil
		}
	}

	ex := NewExecutor(ExecutorConfig{
		Runner:    p.Runner,
		States:    p.States,
		State:     st,
		History:   hist,
		Tracker:   p.Tracker,
		Logger:    p.Logger,
		SessionID: summary.SessionID,
		Resume:    p.Options.Resume,
		SkipSteps: p.Options.SkipSteps,
	})

	p.Logger.Info("starting pipeline session",
		"session", summary.SessionID,
		"prediction_runs", len(p.PredictionRuns),
		"analysis_runs", len(p.AnalysisRuns),
	)

	p.runSession(ctx, ex, &summary)

	if !summary.Failed() && ctx.Err() == nil {
		st.FailedStep = ""
		st.ErrorMessage = ""
		if err := p.States.Write(st); err != nil {
			p.Logger.Error("persist final state", "error", err)
		}
	}

	final := model.StatusSucceeded
	if summary.Failed() {
		final = model.StatusFailed
	}
	if p.Tracker != nil {
		p.Tracker.Finish(final)
	}
	if hist != nil {
		if err := hist.FinishSession(ctx, summary.SessionID, final); err != nil {
			p.Logger.Error("finish history session", "error", err)
		}
	}

	p.Logger.Info("pipeline session finished", "session", summary.SessionID, "status", final, "failed_runs", summary.FailedRuns)
	return summary, nil
}

func (p *Pipeline) runSession(ctx context.Context, ex *Executor, summary *Summary) {
	// The archive step opens the session. Its failure poisons every
	// run's outputs, so unlike run failures it ends the session.
	archive := p.Builder.ArchiveStep(config.ResolveGlobal(p.Config), p.Options.NoArchive)
	if status, err := ex.RunSteps(ctx, "session", []model.Step{archive}); status == model.StatusFailed {
		p.Logger.Error("failed to archive previous outputs", "error", err)
		summary.FailedRuns = append(summary.FailedRuns, "session")
		return
	}

	for _, run := range p.PredictionRuns {
		if ctx.Err() != nil {
			p.Logger.Warn("session interrupted", "before_run", run.ID)
			summary.FailedRuns = append(summary.FailedRuns, run.ID)
			return
		}

		res := config.Resolve(p.Config, run)
		steps := p.Builder.PredictionSteps(res)
		if status, err := ex.RunSteps(ctx, run.ID, steps); status == model.StatusFailed {
			p.Logger.Error("prediction run failed", "run", run.ID, "error", err)
			summary.FailedRuns = append(summary.FailedRuns, run.ID)
		}
	}

	for _, run := range p.AnalysisRuns {
		if ctx.Err() != nil {
			p.Logger.Warn("session interrupted", "before_run", run.ID)
			summary.FailedRuns = append(summary.FailedRuns, run.ID)
			return
		}

		if status, err := p.runAnalysis(ctx, ex, run); status == model.StatusFailed {
			p.Logger.Error("analysis run failed", "run", run.ID, "error", err)
			summary.FailedRuns = append(summary.FailedRuns, run.ID)
		}
	}
}

// runAnalysis resolves an analysis run's source prediction run and
// executes its graph. An unresolvable source or motif fails this run
// only.
func (p *Pipeline) runAnalysis(ctx context.Context, ex *Executor, run model.AnalysisRun) (string, error) {
	base, ok := p.sourceFor(run)
	if !ok {
		p.failWithoutSteps(run.ID)
		return model.StatusFailed, fmt.Errorf("analysis run %q: no defined source prediction run in %v", run.ID, run.SourcePredictions)
	}

	res := config.ResolveAnalysis(p.Config, base, run)
	steps, err := p.Builder.AnalysisSteps(res, run)
	if err != nil {
		p.failWithoutSteps(run.ID)
		return model.StatusFailed, err
	}

	return ex.RunSteps(ctx, run.ID, steps)
}

// sourceFor returns the first source prediction run that is defined in
// the configuration.
func (p *Pipeline) sourceFor(run model.AnalysisRun) (model.PredictionRun, bool) {
	for _, id := range run.SourcePredictions {
		if base, ok := p.Config.FindPredictionRun(id); ok {
			return base, true
		}
	}
	return model.PredictionRun{}, false
}

// failWithoutSteps marks a run failed before any of its steps were
// built.
func (p *Pipeline) failWithoutSteps(runID string) {
	if p.Tracker != nil {
		p.Tracker.StartRun(runID, 0)
		p.Tracker.FinishRun(runID, model.StatusFailed)
	}
	runsTotal.WithLabelValues(model.StatusFailed).Inc()
}

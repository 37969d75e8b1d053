package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/foldworks/foldpipe/internal/api"
	"github.com/foldworks/foldpipe/internal/config"
	"github.com/foldworks/foldpipe/internal/engine"
	"github.com/foldworks/foldpipe/internal/history"
	"github.com/foldworks/foldpipe/internal/plan"
	"github.com/foldworks/foldpipe/internal/state"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	level := config.ParseLogLevel(opts.LogLevel)
	if opts.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	logger := config.NewLogger(os.Stderr, level)

	cfg := config.Load(opts.ConfigPath, logger)
	cfg = config.ApplyGlobalOverrides(cfg, opts.globalOverrides())
	cfg.PredictionRuns = config.ApplyPredictionOverrides(cfg.PredictionRuns, opts.EnablePrediction, opts.DisablePrediction, logger)
	cfg.AnalysisRuns = config.ApplyAnalysisOverrides(cfg.AnalysisRuns, opts.EnableAnalysis, opts.DisableAnalysis, logger)

	var hist history.Store
	if opts.HistoryDB != "" {
		db, err := history.NewSQLiteStore(opts.HistoryDB)
		if err != nil {
			logger.Warn("history ledger disabled", "path", opts.HistoryDB, "error", err)
		} else {
			defer db.Close()
			hist = db
		}
	}

	tracker := engine.NewTracker()

	if opts.StatusAddr != "" {
		srv := api.NewServer(opts.StatusAddr, tracker, hist, logger)
		srv.Start()
		defer func() {
			if err := srv.Shutdown(); err != nil {
				logger.Error("status server shutdown", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &engine.Pipeline{
		Config:         cfg,
		PredictionRuns: config.SelectPredictionRuns(cfg, commaList(opts.PredictionRuns), logger),
		AnalysisRuns:   config.SelectAnalysisRuns(cfg, commaList(opts.AnalysisRuns), logger),
		Builder:        plan.Builder{Quiet: opts.Quiet},
		Runner:         &engine.ExecRunner{Quiet: opts.Quiet},
		States:         state.NewFileStore(opts.StateFile),
		History:        hist,
		Tracker:        tracker,
		Logger:         logger,
		Options: engine.Options{
			Resume:      opts.Resume,
			ForceResume: opts.ForceResume,
			CleanState:  opts.CleanState,
			NoArchive:   opts.NoArchive,
			SkipSteps:   opts.SkipSteps,
		},
	}

	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline aborted", "error", err)
		return 1
	}
	if summary.Failed() {
		return 1
	}
	return 0
}

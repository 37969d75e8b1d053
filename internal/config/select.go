package config

import (
	"log/slog"

	"github.com/foldworks/foldpipe/internal/model"
)

// ApplyGlobalOverrides merges command-line global overrides (engine
// toggles, template, model index) over the global section, returning the
// updated configuration.
func ApplyGlobalOverrides(cfg model.CanonicalConfig, overrides map[string]any) model.CanonicalConfig {
	if len(overrides) == 0 {
		return cfg
	}
	cfg.Global = DeepMerge(cfg.Global, overrides)
	return cfg
}

// ApplyPredictionOverrides returns a new run list with the named runs'
// enabled flags flipped. Unknown ids are ignored, with a warning so
// typos are visible without breaking scripted invocations.
func ApplyPredictionOverrides(runs []model.PredictionRun, enable, disable []string, logger *slog.Logger) []model.PredictionRun {
	enableSet, disableSet := toSet(enable), toSet(disable)
	out := make([]model.PredictionRun, len(runs))
	known := make(map[string]bool, len(runs))
	for i, r := range runs {
		known[r.ID] = true
		if enableSet[r.ID] {
			r.Enabled = true
		}
		if disableSet[r.ID] {
			r.Enabled = false
		}
		out[i] = r
	}
	warnUnknown(logger, "prediction", enableSet, disableSet, known)
	return out
}

// ApplyAnalysisOverrides is ApplyPredictionOverrides for analysis runs.
func ApplyAnalysisOverrides(runs []model.AnalysisRun, enable, disable []string, logger *slog.Logger) []model.AnalysisRun {
	enableSet, disableSet := toSet(enable), toSet(disable)
	out := make([]model.AnalysisRun, len(runs))
	known := make(map[string]bool, len(runs))
	for i, r := range runs {
		known[r.ID] = true
		if enableSet[r.ID] {
			r.Enabled = true
		}
		if disableSet[r.ID] {
			r.Enabled = false
		}
		out[i] = r
	}
	warnUnknown(logger, "analysis", enableSet, disableSet, known)
	return out
}

// SelectPredictionRuns returns the runs to execute. An explicit id list
// restricts the selection; if no listed id matches, the default
// enabled-subset selection applies instead, with a warning.
func SelectPredictionRuns(cfg model.CanonicalConfig, explicit []string, logger *slog.Logger) []model.PredictionRun {
	if len(explicit) > 0 {
		wanted := toSet(explicit)
		var out []model.PredictionRun
		for _, r := range cfg.PredictionRuns {
			if wanted[r.ID] {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			return out
		}
		logger.Warn("no prediction runs match the requested ids, falling back to enabled runs", "requested", explicit)
	}

	var out []model.PredictionRun
	for _, r := range cfg.PredictionRuns {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// SelectAnalysisRuns is SelectPredictionRuns for analysis runs.
func SelectAnalysisRuns(cfg model.CanonicalConfig, explicit []string, logger *slog.Logger) []model.AnalysisRun {
	if len(explicit) > 0 {
		wanted := toSet(explicit)
		var out []model.AnalysisRun
		for _, r := range cfg.AnalysisRuns {
			if wanted[r.ID] {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			return out
		}
		logger.Warn("no analysis runs match the requested ids, falling back to enabled runs", "requested", explicit)
	}

	var out []model.AnalysisRun
	for _, r := range cfg.AnalysisRuns {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func warnUnknown(logger *slog.Logger, kind string, enable, disable, known map[string]bool) {
	for id := range enable {
		if !known[id] {
			logger.Warn("enable override names no "+kind+" run", "id", id)
		}
	}
	for id := range disable {
		if !known[id] {
			logger.Warn("disable override names no "+kind+" run", "id", id)
		}
	}
}

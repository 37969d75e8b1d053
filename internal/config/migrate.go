package config

import "github.com/foldworks/foldpipe/internal/model"

// Three schema generations are recognized:
//
//	gen 1: flat settings only (directories/methods/templates at top level)
//	gen 2: global + configurations
//	gen 3: global + prediction_runs (+ analysis_runs)
//
// Canonicalize always produces the gen-3 shape with all three sections
// present. Migration is purely structural: every field of an older
// document survives in the global section, the migrated run, or the
// synthesized analysis run.
func Canonicalize(doc map[string]any) model.CanonicalConfig {
	global := getMap(doc, "global")

	switch {
	case global != nil && doc["prediction_runs"] != nil:
		return canonicalFrom(global, runObjects(doc, "prediction_runs"), runObjects(doc, "analysis_runs"))

	case global != nil && doc["configurations"] != nil:
		return canonicalFrom(global, runObjects(doc, "configurations"), nil)

	default:
		// Flat document: the whole thing is global settings, with a
		// single "default" prediction run carrying any methods object.
		run := map[string]any{"id": "default", "enabled": true}
		if m := getMap(doc, "methods"); m != nil {
			run["methods"] = m
		}
		return canonicalFrom(doc, []map[string]any{run}, nil)
	}
}

func canonicalFrom(global map[string]any, predictions, analyses []map[string]any) model.CanonicalConfig {
	cfg := model.CanonicalConfig{Global: global}
	if cfg.Global == nil {
		cfg.Global = map[string]any{}
	}

	for _, raw := range predictions {
		cfg.PredictionRuns = append(cfg.PredictionRuns, parsePredictionRun(raw))
	}

	if analyses == nil {
		analyses = []map[string]any{synthesizeWholeProtein(cfg.PredictionRuns)}
	}
	for _, raw := range analyses {
		cfg.AnalysisRuns = append(cfg.AnalysisRuns, parseAnalysisRun(raw))
	}

	return cfg
}

// synthesizeWholeProtein builds the analysis run implied by documents
// that predate the analysis_runs section: one whole-protein pass over
// every prediction run that was enabled.
func synthesizeWholeProtein(runs []model.PredictionRun) map[string]any {
	sources := make([]any, 0, len(runs))
	for _, r := range runs {
		if r.Enabled {
			sources = append(sources, r.ID)
		}
	}
	return map[string]any{
		"id":                 "whole_protein",
		"description":        "Whole-protein analysis (synthesized during migration)",
		"enabled":            true,
		"analysis_type":      model.AnalysisWholeProtein,
		"source_predictions": sources,
	}
}

func runObjects(doc map[string]any, key string) []map[string]any {
	seq, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(seq))
	for _, v := range seq {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func parsePredictionRun(raw map[string]any) model.PredictionRun {
	return model.PredictionRun{
		ID:          getString(raw, "id", "default"),
		Description: getString(raw, "description", ""),
		Enabled:     getBool(raw, "enabled", true),
		Methods:     parseMethods(getMap(raw, "methods")),
		Raw:         raw,
	}
}

func parseAnalysisRun(raw map[string]any) model.AnalysisRun {
	return model.AnalysisRun{
		ID:                getString(raw, "id", "default"),
		Description:       getString(raw, "description", ""),
		Enabled:           getBool(raw, "enabled", true),
		SourcePredictions: getStringSlice(raw, "source_predictions"),
		AnalysisType:      getString(raw, "analysis_type", model.AnalysisWholeProtein),
		MotifID:           getString(raw, "motif_id", ""),
		Metrics:           getStringSlice(raw, "metrics"),
		Raw:               raw,
	}
}

// parseMethods applies the historical defaults: both engines and MSA on,
// MSA directory off.
func parseMethods(m map[string]any) model.Methods {
	return model.Methods{
		UseChai:   getBool(m, "use_chai", true),
		UseBoltz:  getBool(m, "use_boltz", true),
		UseMSA:    getBool(m, "use_msa", true),
		UseMSADir: getBool(m, "use_msa_dir", false),
	}
}

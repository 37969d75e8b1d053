package config

import (
	"testing"

	"github.com/foldworks/foldpipe/internal/model"
)

func TestCanonicalizeCurrentGeneration(t *testing.T) {
	doc := map[string]any{
		"global": map[string]any{"templates": map[string]any{"model_idx": 2}},
		"prediction_runs": []any{
			map[string]any{"id": "fast", "enabled": false},
			map[string]any{"id": "full"},
		},
		"analysis_runs": []any{
			map[string]any{"id": "motifs", "analysis_type": "motif", "motif_id": "site", "source_predictions": []any{"full"}},
		},
	}

	cfg := Canonicalize(doc)

	if len(cfg.PredictionRuns) != 2 {
		t.Fatalf("prediction runs = %d, want 2", len(cfg.PredictionRuns))
	}
	if cfg.PredictionRuns[0].Enabled {
		t.Error("run fast should keep enabled=false")
	}
	if !cfg.PredictionRuns[1].Enabled {
		t.Error("run full should default to enabled")
	}
	if len(cfg.AnalysisRuns) != 1 {
		t.Fatalf("analysis runs = %d, want 1", len(cfg.AnalysisRuns))
	}
	if cfg.AnalysisRuns[0].AnalysisType != model.AnalysisMotif {
		t.Errorf("analysis type = %q, want motif", cfg.AnalysisRuns[0].AnalysisType)
	}
	if cfg.AnalysisRuns[0].MotifID != "site" {
		t.Errorf("motif id = %q, want site", cfg.AnalysisRuns[0].MotifID)
	}
}

func TestCanonicalizeSynthesizesAnalysisForCurrentGeneration(t *testing.T) {
	doc := map[string]any{
		"global":          map[string]any{},
		"prediction_runs": []any{map[string]any{"id": "only"}},
	}

	cfg := Canonicalize(doc)

	if len(cfg.AnalysisRuns) != 1 {
		t.Fatalf("analysis runs = %d, want 1 synthesized", len(cfg.AnalysisRuns))
	}
	got := cfg.AnalysisRuns[0]
	if got.AnalysisType != model.AnalysisWholeProtein {
		t.Errorf("analysis type = %q, want whole_protein", got.AnalysisType)
	}
	if len(got.SourcePredictions) != 1 || got.SourcePredictions[0] != "only" {
		t.Errorf("source predictions = %v, want [only]", got.SourcePredictions)
	}
}

func TestCanonicalizeConfigurationsGeneration(t *testing.T) {
	doc := map[string]any{
		"global": map[string]any{"directories": map[string]any{"plots": "out"}},
		"configurations": []any{
			map[string]any{"id": "a", "enabled": true},
			map[string]any{"id": "b", "enabled": false},
			map[string]any{"id": "c"},
		},
	}

	cfg := Canonicalize(doc)

	if len(cfg.PredictionRuns) != 3 {
		t.Fatalf("prediction runs = %d, want 3", len(cfg.PredictionRuns))
	}
	if len(cfg.AnalysisRuns) != 1 {
		t.Fatalf("analysis runs = %d, want 1 synthesized", len(cfg.AnalysisRuns))
	}
	// Only the enabled runs are sourced: a and c (default true), not b.
	sources := cfg.AnalysisRuns[0].SourcePredictions
	if len(sources) != 2 || sources[0] != "a" || sources[1] != "c" {
		t.Errorf("source predictions = %v, want [a c]", sources)
	}
	if getString(getMap(cfg.Global, "directories"), "plots", "") != "out" {
		t.Error("global settings were dropped during migration")
	}
}

func TestCanonicalizeFlatGeneration(t *testing.T) {
	doc := map[string]any{
		"directories": map[string]any{"chai_fasta": "IN"},
		"methods":     map[string]any{"use_boltz": false},
		"templates":   map[string]any{"model_idx": 7},
	}

	cfg := Canonicalize(doc)

	if len(cfg.PredictionRuns) != 1 {
		t.Fatalf("prediction runs = %d, want 1", len(cfg.PredictionRuns))
	}
	run := cfg.PredictionRuns[0]
	if run.ID != "default" {
		t.Errorf("run id = %q, want default", run.ID)
	}
	if run.Methods.UseBoltz {
		t.Error("methods sub-object was not carried into the synthesized run")
	}
	if !run.Methods.UseChai || !run.Methods.UseMSA {
		t.Error("absent method flags should keep historical defaults")
	}
	if len(cfg.AnalysisRuns) != 1 {
		t.Fatalf("analysis runs = %d, want 1 synthesized", len(cfg.AnalysisRuns))
	}
	if sources := cfg.AnalysisRuns[0].SourcePredictions; len(sources) != 1 || sources[0] != "default" {
		t.Errorf("source predictions = %v, want [default]", sources)
	}
	// Flat settings survive as global settings.
	if getString(getMap(cfg.Global, "directories"), "chai_fasta", "") != "IN" {
		t.Error("flat directory settings were dropped")
	}
	if getInt(getMap(cfg.Global, "templates"), "model_idx", 0) != 7 {
		t.Error("flat template settings were dropped")
	}
}

func TestCanonicalizeAlwaysThreeSections(t *testing.T) {
	docs := []map[string]any{
		{},
		{"methods": map[string]any{}},
		{"global": map[string]any{}, "configurations": []any{}},
		DefaultDocument(),
	}
	for i, doc := range docs {
		cfg := Canonicalize(doc)
		if cfg.Global == nil {
			t.Errorf("doc %d: global is nil", i)
		}
		if len(cfg.PredictionRuns) == 0 && i != 2 {
			t.Errorf("doc %d: no prediction runs", i)
		}
		if len(cfg.AnalysisRuns) == 0 {
			t.Errorf("doc %d: no analysis runs", i)
		}
		rebuilt := cfg.Document()
		for _, key := range []string{"global", "prediction_runs", "analysis_runs"} {
			if _, ok := rebuilt[key]; !ok {
				t.Errorf("doc %d: canonical document missing %q", i, key)
			}
		}
	}
}

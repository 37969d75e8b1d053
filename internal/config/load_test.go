package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.json"), discardLogger())

	if len(cfg.PredictionRuns) != 2 {
		t.Fatalf("prediction runs = %d, want the 2 built-in runs", len(cfg.PredictionRuns))
	}
	if cfg.PredictionRuns[0].ID != "standard" || cfg.PredictionRuns[1].ID != "with_msa" {
		t.Errorf("built-in runs = %v", runIDs(cfg.PredictionRuns))
	}
	if cfg.PredictionRuns[0].Methods.UseMSA {
		t.Error("standard run should not use MSA")
	}
	if !cfg.PredictionRuns[1].Methods.UseMSA {
		t.Error("with_msa run should use MSA")
	}
	if len(cfg.AnalysisRuns) != 1 || len(cfg.AnalysisRuns[0].SourcePredictions) != 2 {
		t.Errorf("built-in analysis runs = %+v", cfg.AnalysisRuns)
	}
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, discardLogger())
	if len(cfg.PredictionRuns) != 2 {
		t.Errorf("prediction runs = %d, want built-in defaults", len(cfg.PredictionRuns))
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_config.json")
	doc := `{
		"global": {"templates": {"model_idx": 3}},
		"prediction_runs": [{"id": "only", "methods": {"use_boltz": false}}]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, discardLogger())

	if len(cfg.PredictionRuns) != 1 || cfg.PredictionRuns[0].ID != "only" {
		t.Fatalf("prediction runs = %v", runIDs(cfg.PredictionRuns))
	}
	if cfg.PredictionRuns[0].Methods.UseBoltz {
		t.Error("use_boltz override not parsed")
	}
	res := Resolve(cfg, cfg.PredictionRuns[0])
	if res.ModelIdx() != 3 {
		t.Errorf("model_idx = %d, want 3", res.ModelIdx())
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_config.yaml")
	doc := `
global:
  templates:
    model_idx: 5
prediction_runs:
  - id: yaml_run
    methods:
      use_chai: false
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, discardLogger())

	if len(cfg.PredictionRuns) != 1 || cfg.PredictionRuns[0].ID != "yaml_run" {
		t.Fatalf("prediction runs = %v", runIDs(cfg.PredictionRuns))
	}
	if cfg.PredictionRuns[0].Methods.UseChai {
		t.Error("use_chai override not parsed from yaml")
	}
	res := Resolve(cfg, cfg.PredictionRuns[0])
	if res.ModelIdx() != 5 {
		t.Errorf("model_idx = %d, want 5", res.ModelIdx())
	}
}

package model_test

import (
	"testing"

	"github.com/foldworks/foldpipe/internal/model"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.StatusPending, model.StatusRunning, true},
		{model.StatusPending, model.StatusFailed, true},
		{model.StatusPending, model.StatusSucceeded, false},
		{model.StatusRunning, model.StatusSucceeded, true},
		{model.StatusRunning, model.StatusFailed, true},
		{model.StatusRunning, model.StatusPending, false},
		{model.StatusSucceeded, model.StatusRunning, false},
		{model.StatusFailed, model.StatusRunning, false},
		{"bogus", model.StatusRunning, false},
	}

	for _, tt := range tests {
		if got := model.ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStepID(t *testing.T) {
	plain := model.Step{Kind: model.StepChaiRun}
	if plain.ID() != "chai-run" {
		t.Errorf("plain step ID = %q, want %q", plain.ID(), "chai-run")
	}

	scoped := model.Step{Kind: model.StepMotifRMSD, MotifID: "binding_site"}
	if scoped.ID() != "motif-rmsd-binding_site" {
		t.Errorf("scoped step ID = %q, want %q", scoped.ID(), "motif-rmsd-binding_site")
	}
}

func TestStepIDDisjointAcrossMotifs(t *testing.T) {
	a := model.Step{Kind: model.StepMotifAlign, MotifID: "site_a"}
	b := model.Step{Kind: model.StepMotifAlign, MotifID: "site_b"}
	if a.ID() == b.ID() {
		t.Errorf("motif step ids collide: %q", a.ID())
	}
}

func TestWantsMetric(t *testing.T) {
	all := model.AnalysisRun{}
	if !all.WantsMetric(model.MetricRMSD) || !all.WantsMetric(model.MetricPLDDT) {
		t.Error("absent metrics list should include all metrics")
	}

	only := model.AnalysisRun{Metrics: []string{model.MetricPLDDT}}
	if only.WantsMetric(model.MetricRMSD) {
		t.Error("rmsd should be filtered out")
	}
	if !only.WantsMetric(model.MetricPLDDT) {
		t.Error("plddt should be included")
	}
}

func TestNewID(t *testing.T) {
	a, b := model.NewID(), model.NewID()
	if a == b {
		t.Errorf("NewID returned duplicate id %q", a)
	}
	if len(a) != 26 {
		t.Errorf("NewID length = %d, want 26", len(a))
	}
}

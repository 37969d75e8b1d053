package model

// Run status constants.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Analysis type constants.
const (
	AnalysisWholeProtein = "whole_protein"
	AnalysisMotif        = "motif"
)

// Metric constants for analysis runs.
const (
	MetricRMSD  = "rmsd"
	MetricPLDDT = "plddt"
)

// validTransitions maps each status to the set of statuses it may transition to.
var validTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusRunning: true,
		StatusFailed:  true,
	},
	StatusRunning: {
		StatusSucceeded: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Methods records which prediction engines and input modifiers a run uses.
type Methods struct {
	UseChai   bool `json:"use_chai"`
	UseBoltz  bool `json:"use_boltz"`
	UseMSA    bool `json:"use_msa"`
	UseMSADir bool `json:"use_msa_dir"`
}

// PredictionRun is one named configuration of input generation and
// structure prediction. Raw holds the run's full document object so that
// per-run overrides (directories, templates, ...) can be merged over the
// global settings at resolution time.
type PredictionRun struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Enabled     bool           `json:"enabled"`
	Methods     Methods        `json:"methods"`
	Raw         map[string]any `json:"-"`
}

// AnalysisRun is one named post-processing pass over prediction outputs.
// SourcePredictions is ordered; the first id that names a defined
// prediction run supplies the configuration base. An empty Metrics slice
// means all metrics.
type AnalysisRun struct {
	ID                string         `json:"id"`
	Description       string         `json:"description,omitempty"`
	Enabled           bool           `json:"enabled"`
	SourcePredictions []string       `json:"source_predictions"`
	AnalysisType      string         `json:"analysis_type"`
	MotifID           string         `json:"motif_id,omitempty"`
	Metrics           []string       `json:"metrics,omitempty"`
	Raw               map[string]any `json:"-"`
}

// WantsMetric reports whether the run includes the given metric.
func (a AnalysisRun) WantsMetric(metric string) bool {
	if len(a.Metrics) == 0 {
		return true
	}
	for _, m := range a.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// MotifDefinition names a subset of residues (or an entire chain) that
// alignment and scoring are restricted to, together with the reference
// structure to align against.
type MotifDefinition struct {
	ID               string   `json:"id"`
	Description      string   `json:"description,omitempty"`
	Chain            string   `json:"chain"`
	WholeProtein     bool     `json:"whole_protein,omitempty"`
	Residues         []int    `json:"residues,omitempty"`
	TemplateResidues []int    `json:"template_residues,omitempty"`
	Molecules        []string `json:"molecules,omitempty"`
	Template         string   `json:"template,omitempty"`
	ModelIdx         *int     `json:"model_idx,omitempty"`
}

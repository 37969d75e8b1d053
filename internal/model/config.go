package model

// CanonicalConfig is the fully migrated configuration document. Every
// loaded document, regardless of which schema generation it was written
// in, is normalized to this shape: all three sections present, runs
// parsed into records.
type CanonicalConfig struct {
	Global         map[string]any
	PredictionRuns []PredictionRun
	AnalysisRuns   []AnalysisRun
}

// FindPredictionRun returns the prediction run with the given id.
func (c CanonicalConfig) FindPredictionRun(id string) (PredictionRun, bool) {
	for _, r := range c.PredictionRuns {
		if r.ID == id {
			return r, true
		}
	}
	return PredictionRun{}, false
}

// Document rebuilds the canonical three-key document as generic maps,
// suitable for canonical serialization and hashing. Run entries use
// their raw objects so that no override field is lost.
func (c CanonicalConfig) Document() map[string]any {
	preds := make([]any, 0, len(c.PredictionRuns))
	for _, r := range c.PredictionRuns {
		preds = append(preds, r.Raw)
	}
	analyses := make([]any, 0, len(c.AnalysisRuns))
	for _, r := range c.AnalysisRuns {
		analyses = append(analyses, r.Raw)
	}
	return map[string]any{
		"global":          c.Global,
		"prediction_runs": preds,
		"analysis_runs":   analyses,
	}
}

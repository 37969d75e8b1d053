package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/foldworks/foldpipe/internal/model"
)

// ErrMotifNotFound is returned when a referenced motif id is absent from
// the motifs section.
var ErrMotifNotFound = errors.New("motif not found")

// ErrInvalidMotifID is returned when a motif id contains characters
// outside the allowed set. Motif ids appear as suffixes of step ids, so
// the separator character is excluded from the set.
var ErrInvalidMotifID = errors.New("invalid motif id")

var motifIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Resolved is a configuration document after deep-merging a run's
// overrides over the global settings. Accessors carry the historical
// defaults for settings the document omits.
type Resolved struct {
	doc map[string]any
}

// Resolve merges a prediction run's overrides over the global settings.
func Resolve(cfg model.CanonicalConfig, run model.PredictionRun) Resolved {
	return Resolved{doc: DeepMerge(cfg.Global, stripRunKeys(run.Raw))}
}

// ResolveGlobal wraps the global settings alone, for steps that belong
// to the session rather than to any run.
func ResolveGlobal(cfg model.CanonicalConfig) Resolved {
	return Resolved{doc: cfg.Global}
}

// ResolveAnalysis layers an analysis run's overrides over its source
// prediction run's resolved configuration.
func ResolveAnalysis(cfg model.CanonicalConfig, base model.PredictionRun, run model.AnalysisRun) Resolved {
	doc := DeepMerge(cfg.Global, stripRunKeys(base.Raw))
	return Resolved{doc: DeepMerge(doc, stripRunKeys(run.Raw))}
}

// runKeys are run bookkeeping fields, not settings; they never merge
// into the resolved document.
var runKeys = map[string]bool{
	"id":                 true,
	"description":        true,
	"enabled":            true,
	"source_predictions": true,
	"analysis_type":      true,
	"motif_id":           true,
	"metrics":            true,
}

func stripRunKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if !runKeys[k] {
			out[k] = v
		}
	}
	return out
}

// Doc exposes the merged document.
func (r Resolved) Doc() map[string]any { return r.doc }

// Dir returns the directory registered under the given logical name.
func (r Resolved) Dir(name string) string {
	return getString(getMap(r.doc, "directories"), name, "")
}

// Methods returns the resolved engine and modifier toggles.
func (r Resolved) Methods() model.Methods {
	return parseMethods(getMap(r.doc, "methods"))
}

// DefaultTemplate returns the run's default template file name.
func (r Resolved) DefaultTemplate() string {
	return getString(getMap(r.doc, "templates"), "default_template", "")
}

// ModelIdx returns the model index to search prediction outputs for.
func (r Resolved) ModelIdx() int {
	return getInt(getMap(r.doc, "templates"), "model_idx", 4)
}

// RMSDBounds returns the color-scale bounds for RMSD heatmaps.
func (r Resolved) RMSDBounds() (vmin, vmax float64, ok bool) {
	viz := getMap(r.doc, "visualization")
	vmin, okMin := getFloat(viz, "rmsd_vmin")
	vmax, okMax := getFloat(viz, "rmsd_vmax")
	return vmin, vmax, okMin && okMax
}

// Interpreter returns the collaborator entry point.
func (r Resolved) Interpreter() string {
	return getString(getMap(r.doc, "scripts"), "interpreter", "python3")
}

// ScriptsDir returns the directory holding the collaborator scripts.
func (r Resolved) ScriptsDir() string {
	return getString(getMap(r.doc, "scripts"), "dir", "src")
}

// ResolveMotif looks up a motif definition by id. The id is validated
// against the restricted character set before lookup; an id that fails
// validation can never name a motif.
func (r Resolved) ResolveMotif(id string) (model.MotifDefinition, error) {
	if !motifIDPattern.MatchString(id) {
		return model.MotifDefinition{}, fmt.Errorf("%w: %q", ErrInvalidMotifID, id)
	}
	raw, ok := getMap(r.doc, "motifs")[id].(map[string]any)
	if !ok {
		return model.MotifDefinition{}, fmt.Errorf("%w: %q", ErrMotifNotFound, id)
	}
	return parseMotif(id, raw), nil
}

// ResolveTemplatePath returns the reference structure to align against,
// preferring a motif-specific template over the run default. Relative
// paths resolve against the templates directory.
func (r Resolved) ResolveTemplatePath(motif *model.MotifDefinition) string {
	tpl := r.DefaultTemplate()
	if motif != nil && motif.Template != "" {
		tpl = motif.Template
	}
	if tpl == "" || filepath.IsAbs(tpl) {
		return tpl
	}
	dir := r.Dir("templates")
	if dir == "" {
		return tpl
	}
	return filepath.Join(dir, tpl)
}

func parseMotif(id string, raw map[string]any) model.MotifDefinition {
	def := model.MotifDefinition{
		ID:               id,
		Description:      getString(raw, "description", ""),
		Chain:            getString(raw, "chain", ""),
		WholeProtein:     getBool(raw, "whole_protein", false),
		Residues:         getIntSlice(raw, "residues"),
		TemplateResidues: getIntSlice(raw, "template_residues"),
		Molecules:        getStringSlice(raw, "molecules"),
		Template:         getString(raw, "template", ""),
	}
	if idx, ok := getFloat(raw, "model_idx"); ok {
		n := int(idx)
		def.ModelIdx = &n
	}
	return def
}

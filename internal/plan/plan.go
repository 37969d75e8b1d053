// Package plan expands a resolved configuration into the ordered step
// graph for one run. Steps are built fresh on every invocation; a step
// for a disabled engine is omitted from the graph entirely, never
// emitted as skipped.
package plan

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/foldworks/foldpipe/internal/config"
	"github.com/foldworks/foldpipe/internal/model"
)

// Builder constructs step graphs. Quiet propagates the orchestrator's
// quiet flag to every collaborator command.
type Builder struct {
	Quiet bool
}

// script returns the argv prefix for a collaborator: the interpreter and
// the script path inside the resolved scripts directory.
func (b Builder) script(res config.Resolved, name string) []string {
	return []string{res.Interpreter(), filepath.Join(res.ScriptsDir(), name+".py")}
}

func (b Builder) finish(cmd []string) []string {
	if b.Quiet {
		cmd = append(cmd, "--quiet")
	}
	return cmd
}

// ArchiveStep builds the session-opening step that archives (or, with
// noArchive, deletes) the previous output trees.
func (b Builder) ArchiveStep(res config.Resolved, noArchive bool) model.Step {
	cmd := b.script(res, "archive_and_clean")
	if noArchive {
		cmd = append(cmd, "--no-archive")
	}
	return model.Step{
		Kind:        model.StepArchive,
		Command:     b.finish(cmd),
		Description: "Archiving previous outputs",
	}
}

// PredictionSteps builds the graph for one prediction run: input
// generation followed by engine invocation, per enabled engine, in
// fixed order.
func (b Builder) PredictionSteps(res config.Resolved) []model.Step {
	m := res.Methods()
	var steps []model.Step

	if m.UseChai {
		steps = append(steps, model.Step{
			Kind:        model.StepChaiFasta,
			Command:     b.finish(b.script(res, "generate_chai_fasta")),
			Description: "Generating CHAI FASTA files",
		})

		cmd := append(b.script(res, "run_chai_apptainer"),
			"--input="+res.Dir("chai_fasta"),
			"--output="+res.Dir("chai_output"),
		)
		if m.UseMSA {
			cmd = append(cmd, "--use-msa")
			if m.UseMSADir {
				cmd = append(cmd, "--use-msa-dir")
			}
		}
		steps = append(steps, model.Step{
			Kind:        model.StepChaiRun,
			Command:     b.finish(cmd),
			Description: "Running CHAI predictions",
		})
	}

	if m.UseBoltz {
		steps = append(steps, model.Step{
			Kind:        model.StepBoltzYAML,
			Command:     b.finish(b.script(res, "generate_boltz_yaml")),
			Description: "Generating Boltz YAML files",
		})

		cmd := append(b.script(res, "run_boltz_apptainer"),
			"--input="+res.Dir("boltz_yaml"),
			"--output="+res.Dir("boltz_output"),
		)
		if m.UseMSA {
			cmd = append(cmd, "--use-msa")
		}
		steps = append(steps, model.Step{
			Kind:        model.StepBoltzRun,
			Command:     b.finish(cmd),
			Description: "Running BOLTZ predictions",
		})
	}

	return steps
}

// AnalysisSteps builds the graph for one analysis run against its
// resolved configuration. Motif-scoped runs require a resolvable motif
// definition; failure to resolve is fatal for this run only.
func (b Builder) AnalysisSteps(res config.Resolved, run model.AnalysisRun) ([]model.Step, error) {
	if run.AnalysisType == model.AnalysisMotif {
		return b.motifSteps(res, run)
	}
	return b.wholeProteinSteps(res), nil
}

func (b Builder) wholeProteinSteps(res config.Resolved) []model.Step {
	m := res.Methods()

	combine := append(b.script(res, "combine_cif_files"),
		"--chai-output="+res.Dir("chai_output"),
		"--boltz-output="+res.Dir("boltz_output"),
		"--pse-files="+res.Dir("pse_files"),
		"--model-idx="+strconv.Itoa(res.ModelIdx()),
	)
	if tpl := res.ResolveTemplatePath(nil); tpl != "" {
		combine = append(combine, "--template="+tpl)
	}
	combine = appendMethodFlags(combine, m)

	rmsd := append(b.script(res, "plot_rmsd_heatmap"),
		"--pse-files="+res.Dir("pse_files"),
		"--plots="+res.Dir("plots"),
	)
	rmsd = appendMethodFlags(rmsd, m)

	plddt := append(b.script(res, "plot_plddt_heatmap"),
		"--chai-output="+res.Dir("chai_output"),
		"--boltz-output="+res.Dir("boltz_output"),
		"--plots="+res.Dir("plots"),
	)
	plddt = appendMethodFlags(plddt, m)

	return []model.Step{
		{Kind: model.StepCombineCIF, Command: b.finish(combine), Description: "Combining structures and creating PyMOL sessions"},
		{Kind: model.StepRMSDPlot, Command: b.finish(rmsd), Description: "Generating RMSD heatmaps"},
		{Kind: model.StepPLDDTPlot, Command: b.finish(plddt), Description: "Generating pLDDT heatmaps"},
	}
}

func (b Builder) motifSteps(res config.Resolved, run model.AnalysisRun) ([]model.Step, error) {
	motif, err := res.ResolveMotif(run.MotifID)
	if err != nil {
		return nil, err
	}

	modelIdx := res.ModelIdx()
	if motif.ModelIdx != nil {
		modelIdx = *motif.ModelIdx
	}

	combine := append(b.script(res, "combine_cif_files"),
		"--chai-output="+res.Dir("chai_output"),
		"--boltz-output="+res.Dir("boltz_output"),
		"--pse-files="+res.Dir("pse_files"),
		"--model-idx="+strconv.Itoa(modelIdx),
		"--motif="+motif.ID,
	)
	if tpl := res.ResolveTemplatePath(&motif); tpl != "" {
		combine = append(combine, "--template="+tpl)
	}
	combine = appendMethodFlags(combine, res.Methods())

	align := append(b.script(res, "motif_alignment"),
		"--motif="+motif.ID,
		"--pse-files="+res.Dir("pse_files"),
	)

	steps := []model.Step{
		{
			Kind:        model.StepCombineCIF,
			MotifID:     motif.ID,
			Command:     b.finish(combine),
			Description: fmt.Sprintf("Combining structures for motif %s", motif.ID),
		},
		{
			Kind:        model.StepMotifAlign,
			MotifID:     motif.ID,
			Command:     b.finish(align),
			Description: fmt.Sprintf("Aligning motif %s", motif.ID),
		},
	}

	if run.WantsMetric(model.MetricRMSD) {
		cmd := append(b.script(res, "plot_motif_rmsd"),
			"--motif="+motif.ID,
			"--plots="+res.Dir("plots"),
		)
		if vmin, vmax, ok := res.RMSDBounds(); ok {
			cmd = append(cmd,
				"--vmin="+strconv.FormatFloat(vmin, 'g', -1, 64),
				"--vmax="+strconv.FormatFloat(vmax, 'g', -1, 64),
			)
		}
		steps = append(steps, model.Step{
			Kind:        model.StepMotifRMSD,
			MotifID:     motif.ID,
			Command:     b.finish(cmd),
			Description: fmt.Sprintf("Generating RMSD heatmap for motif %s", motif.ID),
		})
	}

	if run.WantsMetric(model.MetricPLDDT) {
		extract := append(b.script(res, "extract_motif_plddt"),
			"--motif="+motif.ID,
			"--chai-output="+res.Dir("chai_output"),
			"--boltz-output="+res.Dir("boltz_output"),
			"--csv="+res.Dir("csv"),
		)
		plot := append(b.script(res, "plot_motif_plddt"),
			"--motif="+motif.ID,
			"--csv="+res.Dir("csv"),
			"--plots="+res.Dir("plots"),
		)
		steps = append(steps,
			model.Step{
				Kind:        model.StepMotifPLDDTExtract,
				MotifID:     motif.ID,
				Command:     b.finish(extract),
				Description: fmt.Sprintf("Extracting pLDDT scores for motif %s", motif.ID),
			},
			model.Step{
				Kind:        model.StepMotifPLDDTPlot,
				MotifID:     motif.ID,
				Command:     b.finish(plot),
				Description: fmt.Sprintf("Generating pLDDT heatmap for motif %s", motif.ID),
			},
		)
	}

	return steps, nil
}

// appendMethodFlags adds the negative method flags the analysis
// collaborators expect when an engine or modifier is off.
func appendMethodFlags(cmd []string, m model.Methods) []string {
	if !m.UseChai {
		cmd = append(cmd, "--no-chai")
	}
	if !m.UseBoltz {
		cmd = append(cmd, "--no-boltz")
	}
	if !m.UseMSA {
		cmd = append(cmd, "--no-msa")
	}
	return cmd
}

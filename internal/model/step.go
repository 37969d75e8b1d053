package model

// Step kind constants. The kind is the base step identifier; motif-scoped
// steps derive their ledger identity from (kind, motif id).
const (
	StepArchive           = "archive"
	StepChaiFasta         = "chai-fasta"
	StepChaiRun           = "chai-run"
	StepBoltzYAML         = "boltz-yaml"
	StepBoltzRun          = "boltz-run"
	StepCombineCIF        = "combine-cif"
	StepRMSDPlot          = "rmsd-plot"
	StepPLDDTPlot         = "plddt-plot"
	StepMotifAlign        = "motif-align"
	StepMotifRMSD         = "motif-rmsd"
	StepMotifPLDDTExtract = "motif-plddt-extract"
	StepMotifPLDDTPlot    = "motif-plddt-plot"
)

// Step is one external-process invocation. Steps are value objects built
// fresh on every graph construction; only their ledger id is persisted.
type Step struct {
	Kind        string
	MotifID     string
	Command     []string
	Description string
}

// ID returns the step's ledger identity. Motif-scoped steps are suffixed
// with the motif id so that two motifs produce disjoint ledger entries.
// Motif ids are validated against a restricted character set at
// resolution time, so the suffix form is unambiguous.
func (s Step) ID() string {
	if s.MotifID == "" {
		return s.Kind
	}
	return s.Kind + "-" + s.MotifID
}

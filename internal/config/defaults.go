package config

// DefaultDocument returns the built-in configuration used when no
// document can be read: two prediction runs (with and without MSA) and a
// single whole-protein analysis run sourcing both.
func DefaultDocument() map[string]any {
	return map[string]any{
		"global": map[string]any{
			"directories": map[string]any{
				"chai_fasta":   "CHAI_FASTA",
				"boltz_yaml":   "BOLTZ_YAML",
				"chai_output":  "OUTPUT/CHAI",
				"boltz_output": "OUTPUT/BOLTZ",
				"pse_files":    "PSE_FILES",
				"plots":        "plots",
				"csv":          "csv",
				"templates":    ".",
			},
			"templates": map[string]any{
				"default_template": "KOr_w_momSalB.cif",
				"model_idx":        4,
			},
			"visualization": map[string]any{
				"rmsd_vmin": 0.2,
				"rmsd_vmax": 6.2,
			},
			"scripts": map[string]any{
				"interpreter": "python3",
				"dir":         "src",
			},
			"motifs": map[string]any{},
		},
		"prediction_runs": []any{
			map[string]any{
				"id":          "standard",
				"description": "Predictions without MSA",
				"enabled":     true,
				"methods": map[string]any{
					"use_chai":    true,
					"use_boltz":   true,
					"use_msa":     false,
					"use_msa_dir": false,
				},
			},
			map[string]any{
				"id":          "with_msa",
				"description": "Predictions with MSA",
				"enabled":     true,
				"methods": map[string]any{
					"use_chai":    true,
					"use_boltz":   true,
					"use_msa":     true,
					"use_msa_dir": false,
				},
			},
		},
		"analysis_runs": []any{
			map[string]any{
				"id":                 "whole_protein",
				"description":        "Whole-protein analysis across all predictions",
				"enabled":            true,
				"analysis_type":      "whole_protein",
				"source_predictions": []any{"standard", "with_msa"},
			},
		},
	}
}

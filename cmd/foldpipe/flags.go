package main

import (
	"flag"
	"fmt"
	"strings"
)

const (
	defaultConfigPath = "pipeline_config.json"
	defaultStateFile  = "pipeline_state.json"
	defaultHistoryDB  = "foldpipe_history.db"

	envConfig     = "FOLDPIPE_CONFIG"
	envStateFile  = "FOLDPIPE_STATE_FILE"
	envHistoryDB  = "FOLDPIPE_HISTORY_DB"
	envStatusAddr = "FOLDPIPE_STATUS_ADDR"
	envLogLevel   = "FOLDPIPE_LOG_LEVEL"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options is the parsed CLI surface. Environment variables seed the
// defaults for operational settings; flags win over both.
type options struct {
	ConfigPath string
	StateFile  string
	HistoryDB  string
	StatusAddr string
	LogLevel   string

	Resume      bool
	ForceResume bool
	CleanState  bool
	SkipSteps   stringList
	NoArchive   bool
	Quiet       bool

	PredictionRuns string
	AnalysisRuns   string

	EnablePrediction  stringList
	DisablePrediction stringList
	EnableAnalysis    stringList
	DisableAnalysis   stringList

	UseChai   bool
	NoChai    bool
	UseBoltz  bool
	NoBoltz   bool
	UseMSA    bool
	NoMSA     bool
	UseMSADir bool
	Template  string
	ModelIdx  int

	set map[string]bool
}

// parseOptions parses args against the full flag surface. getenv
// supplies environment defaults so tests can inject their own.
func parseOptions(args []string, getenv func(string) string) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	envOr := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	fs := flag.NewFlagSet("foldpipe", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", envOr(envConfig, defaultConfigPath), "pipeline configuration file (JSON or YAML)")
	fs.StringVar(&opts.StateFile, "state-file", envOr(envStateFile, defaultStateFile), "pipeline state file")
	fs.StringVar(&opts.HistoryDB, "history-db", envOr(envHistoryDB, defaultHistoryDB), "history ledger database (empty disables)")
	fs.StringVar(&opts.StatusAddr, "status-addr", envOr(envStatusAddr, ""), "status server listen address (empty disables)")
	fs.StringVar(&opts.LogLevel, "log-level", envOr(envLogLevel, "info"), "log level (debug, info, warn, error)")

	fs.BoolVar(&opts.Resume, "resume", false, "skip steps recorded as completed")
	fs.BoolVar(&opts.ForceResume, "force-resume", false, "resume even if the configuration changed")
	fs.BoolVar(&opts.CleanState, "clean-state", false, "discard the state file before running")
	fs.Var(&opts.SkipSteps, "skip-step", "step to skip, repeatable")
	fs.BoolVar(&opts.NoArchive, "no-archive", false, "delete previous outputs instead of archiving")
	fs.BoolVar(&opts.Quiet, "quiet", false, "suppress collaborator output")

	fs.StringVar(&opts.PredictionRuns, "prediction-runs", "", "comma-separated prediction run ids to execute")
	fs.StringVar(&opts.AnalysisRuns, "analysis-runs", "", "comma-separated analysis run ids to execute")
	fs.Var(&opts.EnablePrediction, "enable-prediction", "prediction run to enable, repeatable")
	fs.Var(&opts.DisablePrediction, "disable-prediction", "prediction run to disable, repeatable")
	fs.Var(&opts.EnableAnalysis, "enable-analysis", "analysis run to enable, repeatable")
	fs.Var(&opts.DisableAnalysis, "disable-analysis", "analysis run to disable, repeatable")

	fs.BoolVar(&opts.UseChai, "use-chai", false, "enable the CHAI engine for all runs")
	fs.BoolVar(&opts.NoChai, "no-chai", false, "disable the CHAI engine for all runs")
	fs.BoolVar(&opts.UseBoltz, "use-boltz", false, "enable the Boltz engine for all runs")
	fs.BoolVar(&opts.NoBoltz, "no-boltz", false, "disable the Boltz engine for all runs")
	fs.BoolVar(&opts.UseMSA, "use-msa", false, "enable MSA input for all runs")
	fs.BoolVar(&opts.NoMSA, "no-msa", false, "disable MSA input for all runs")
	fs.BoolVar(&opts.UseMSADir, "use-msa-dir", false, "pass a precomputed MSA directory to CHAI")
	fs.StringVar(&opts.Template, "template", "", "override the default template file")
	fs.IntVar(&opts.ModelIdx, "model-idx", 0, "override the model index")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// globalOverrides builds the document fragment the method, template and
// model-idx flags merge over the global section. Only flags the user
// actually passed appear; absent keys leave the file's values alone.
func (o *options) globalOverrides() map[string]any {
	overrides := make(map[string]any)

	methods := make(map[string]any)
	if o.set["no-chai"] {
		methods["use_chai"] = false
	} else if o.set["use-chai"] {
		methods["use_chai"] = true
	}
	if o.set["no-boltz"] {
		methods["use_boltz"] = false
	} else if o.set["use-boltz"] {
		methods["use_boltz"] = true
	}
	if o.set["no-msa"] {
		methods["use_msa"] = false
	} else if o.set["use-msa"] {
		methods["use_msa"] = true
	}
	if o.set["use-msa-dir"] {
		methods["use_msa_dir"] = o.UseMSADir
	}
	if len(methods) > 0 {
		overrides["methods"] = methods
	}

	templates := make(map[string]any)
	if o.set["template"] {
		templates["default_template"] = o.Template
	}
	if o.set["model-idx"] {
		templates["model_idx"] = o.ModelIdx
	}
	if len(templates) > 0 {
		overrides["templates"] = templates
	}

	return overrides
}

// commaList splits a comma-separated flag value into trimmed ids.
func commaList(v string) []string {
	if v == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(v, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

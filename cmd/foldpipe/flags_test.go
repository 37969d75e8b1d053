package main

import (
	"reflect"
	"testing"
)

func noEnv(string) string { return "" }

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := parseOptions(nil, noEnv)
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts.ConfigPath != defaultConfigPath {
		t.Errorf("ConfigPath = %q, want %q", opts.ConfigPath, defaultConfigPath)
	}
	if opts.StateFile != defaultStateFile {
		t.Errorf("StateFile = %q, want %q", opts.StateFile, defaultStateFile)
	}
	if opts.HistoryDB != defaultHistoryDB {
		t.Errorf("HistoryDB = %q, want %q", opts.HistoryDB, defaultHistoryDB)
	}
	if opts.StatusAddr != "" {
		t.Errorf("StatusAddr = %q, want empty", opts.StatusAddr)
	}
	if opts.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", opts.LogLevel)
	}
}

func TestParseOptionsEnvDefaults(t *testing.T) {
	env := map[string]string{
		envConfig:     "env_config.yaml",
		envStateFile:  "env_state.json",
		envHistoryDB:  "env_history.db",
		envStatusAddr: ":9090",
		envLogLevel:   "debug",
	}
	opts, err := parseOptions(nil, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts.ConfigPath != "env_config.yaml" || opts.StateFile != "env_state.json" ||
		opts.HistoryDB != "env_history.db" || opts.StatusAddr != ":9090" || opts.LogLevel != "debug" {
		t.Errorf("environment defaults not applied: %+v", opts)
	}
}

func TestParseOptionsFlagsBeatEnv(t *testing.T) {
	env := map[string]string{envConfig: "env_config.json"}
	opts, err := parseOptions([]string{"--config", "cli_config.json"}, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts.ConfigPath != "cli_config.json" {
		t.Errorf("ConfigPath = %q, want cli_config.json", opts.ConfigPath)
	}
}

func TestParseOptionsRepeatableFlags(t *testing.T) {
	opts, err := parseOptions([]string{
		"--skip-step", "chai-run",
		"--skip-step", "motif-rmsd",
		"--disable-prediction", "with_msa",
	}, noEnv)
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if !reflect.DeepEqual([]string(opts.SkipSteps), []string{"chai-run", "motif-rmsd"}) {
		t.Errorf("SkipSteps = %v", opts.SkipSteps)
	}
	if !reflect.DeepEqual([]string(opts.DisablePrediction), []string{"with_msa"}) {
		t.Errorf("DisablePrediction = %v", opts.DisablePrediction)
	}
}

func TestParseOptionsRejectsPositionalArgs(t *testing.T) {
	if _, err := parseOptions([]string{"extra"}, noEnv); err == nil {
		t.Error("parseOptions() accepted positional arguments")
	}
}

func TestGlobalOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "no flags",
			args: nil,
			want: map[string]any{},
		},
		{
			name: "enable chai",
			args: []string{"--use-chai"},
			want: map[string]any{"methods": map[string]any{"use_chai": true}},
		},
		{
			name: "no-chai wins over use-chai",
			args: []string{"--use-chai", "--no-chai"},
			want: map[string]any{"methods": map[string]any{"use_chai": false}},
		},
		{
			name: "template and model idx",
			args: []string{"--template", "ref.cif", "--model-idx", "2"},
			want: map[string]any{"templates": map[string]any{"default_template": "ref.cif", "model_idx": 2}},
		},
		{
			name: "msa dir",
			args: []string{"--use-msa", "--use-msa-dir"},
			want: map[string]any{"methods": map[string]any{"use_msa": true, "use_msa_dir": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseOptions(tt.args, noEnv)
			if err != nil {
				t.Fatalf("parseOptions() error = %v", err)
			}
			if got := opts.globalOverrides(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("globalOverrides() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommaList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"standard", []string{"standard"}},
		{"standard,with_msa", []string{"standard", "with_msa"}},
		{" standard , with_msa ,", []string{"standard", "with_msa"}},
	}
	for _, tt := range tests {
		if got := commaList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("commaList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

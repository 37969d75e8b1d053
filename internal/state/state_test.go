package state_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foldworks/foldpipe/internal/state"
)

func TestUpdateSuccessIdempotent(t *testing.T) {
	s := &state.PipelineState{}

	s.Update("chai-fasta", true, "")
	s.Update("chai-fasta", true, "")

	if len(s.CompletedSteps) != 1 {
		t.Errorf("completed steps = %v, want single entry", s.CompletedSteps)
	}
}

func TestUpdateFailureLeavesLedgerUntouched(t *testing.T) {
	s := &state.PipelineState{CompletedSteps: []string{"archive"}}

	s.Update("chai-run", false, "exit status 1")

	if s.FailedStep != "chai-run" {
		t.Errorf("failed step = %q, want chai-run", s.FailedStep)
	}
	if s.ErrorMessage != "exit status 1" {
		t.Errorf("error message = %q", s.ErrorMessage)
	}
	if s.Completed("chai-run") {
		t.Error("a failed step must never be marked complete")
	}
	if !s.Completed("archive") {
		t.Error("prior ledger entries must survive a failure")
	}
}

func TestUpdateSuccessClearsMatchingFailure(t *testing.T) {
	s := &state.PipelineState{FailedStep: "chai-run", ErrorMessage: "boom"}

	s.Update("boltz-run", true, "")
	if s.FailedStep != "chai-run" {
		t.Error("success of a different step must not clear the failure")
	}

	s.Update("chai-run", true, "")
	if s.FailedStep != "" || s.ErrorMessage != "" {
		t.Errorf("failure not cleared: %q %q", s.FailedStep, s.ErrorMessage)
	}
	if !s.Completed("chai-run") {
		t.Error("retried step should join the ledger")
	}
}

func TestShouldSkip(t *testing.T) {
	s := &state.PipelineState{CompletedSteps: []string{"archive"}}

	if s.ShouldSkip("archive", false) {
		t.Error("nothing skips when not resuming")
	}
	if !s.ShouldSkip("archive", true) {
		t.Error("completed step should skip on resume")
	}
	if s.ShouldSkip("chai-run", true) {
		t.Error("uncompleted step must not skip")
	}
}

func TestClean(t *testing.T) {
	s := &state.PipelineState{
		ConfigHash:     "abc",
		CompletedSteps: []string{"a", "b"},
		FailedStep:     "c",
		ErrorMessage:   "boom",
	}

	s.Clean()

	if len(s.CompletedSteps) != 0 || s.FailedStep != "" || s.ErrorMessage != "" || s.ConfigHash != "" {
		t.Errorf("Clean left state behind: %+v", s)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_state.json")
	store := state.NewFileStore(path)

	now := time.Now().UTC().Truncate(time.Second)
	in := &state.PipelineState{
		LastRun:        &now,
		ConfigHash:     "abc123",
		CompletedSteps: []string{"archive", "chai-fasta"},
		FailedStep:     "chai-run",
		ErrorMessage:   "exit status 2",
	}
	if err := store.Write(in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := store.Read()
	if out.ConfigHash != "abc123" {
		t.Errorf("config hash = %q", out.ConfigHash)
	}
	if len(out.CompletedSteps) != 2 {
		t.Errorf("completed steps = %v", out.CompletedSteps)
	}
	if out.FailedStep != "chai-run" || out.ErrorMessage != "exit status 2" {
		t.Errorf("failure fields = %q %q", out.FailedStep, out.ErrorMessage)
	}
	if out.LastRun == nil || !out.LastRun.Equal(now) {
		t.Errorf("last run = %v, want %v", out.LastRun, now)
	}
}

func TestFileStoreReadAbsentOrBroken(t *testing.T) {
	dir := t.TempDir()

	absent := state.NewFileStore(filepath.Join(dir, "missing.json"))
	if s := absent.Read(); len(s.CompletedSteps) != 0 || s.ConfigHash != "" {
		t.Errorf("absent file should read as zero state, got %+v", s)
	}

	brokenPath := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(brokenPath, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := state.NewFileStore(brokenPath)
	if s := broken.Read(); len(s.CompletedSteps) != 0 {
		t.Errorf("broken file should read as zero state, got %+v", s)
	}
}

func TestFileStoreWritesEmptyLedgerAsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_state.json")
	store := state.NewFileStore(path)

	if err := store.Write(&state.PipelineState{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("state file is not valid json: %v", err)
	}
	if _, ok := doc["completed_steps"].([]any); !ok {
		t.Errorf("completed_steps should serialize as an array, got %T", doc["completed_steps"])
	}
}

func TestComputeHashStableUnderKeyOrder(t *testing.T) {
	a := `{"global": {"x": 1, "y": [1, 2]}, "prediction_runs": []}`
	b := `{"prediction_runs": [],   "global": {"y": [1, 2], "x": 1}}`

	var docA, docB map[string]any
	if err := json.Unmarshal([]byte(a), &docA); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(b), &docB); err != nil {
		t.Fatal(err)
	}

	if state.ComputeHash(docA) != state.ComputeHash(docB) {
		t.Error("hash should be stable under key order and whitespace")
	}
}

func TestComputeHashChangesOnLeafChange(t *testing.T) {
	docA := map[string]any{"global": map[string]any{"model_idx": 4.0}}
	docB := map[string]any{"global": map[string]any{"model_idx": 5.0}}

	if state.ComputeHash(docA) == state.ComputeHash(docB) {
		t.Error("hash should change when a leaf value changes")
	}
}

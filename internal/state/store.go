package state

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store defines the persistence operations for pipeline state.
type Store interface {
	// Read returns the persisted state. A missing or unparsable file
	// yields a zero-value state, never an error: resuming from nothing
	// is always valid.
	Read() *PipelineState

	// Write persists the state as a whole-document rewrite.
	Write(s *PipelineState) error
}

// Compile-time interface satisfaction checks.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)

// FileStore persists state as a JSON document at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read loads the state file, returning a zero state if it is absent or
// unparsable.
func (f *FileStore) Read() *PipelineState {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return &PipelineState{}
	}
	var s PipelineState
	if err := json.Unmarshal(data, &s); err != nil {
		return &PipelineState{}
	}
	return &s
}

// Write rewrites the whole state file.
func (f *FileStore) Write(s *PipelineState) error {
	if s.CompletedSteps == nil {
		s.CompletedSteps = []string{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	state *PipelineState
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Read returns a copy of the stored state, or a zero state.
func (m *MemStore) Read() *PipelineState {
	if m.state == nil {
		return &PipelineState{}
	}
	cp := *m.state
	cp.CompletedSteps = append([]string(nil), m.state.CompletedSteps...)
	return &cp
}

// Write stores a copy of the state.
func (m *MemStore) Write(s *PipelineState) error {
	cp := *s
	cp.CompletedSteps = append([]string(nil), s.CompletedSteps...)
	m.state = &cp
	return nil
}

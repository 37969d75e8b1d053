// Package config loads pipeline configuration documents, migrates older
// schema generations into the canonical three-section shape, and
// resolves per-run settings against the global section.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foldworks/foldpipe/internal/model"
)

// Load reads and canonicalizes the configuration document at path. An
// unreadable or unparsable document is not an error: the built-in
// default document is used instead, with a warning.
func Load(path string, logger *slog.Logger) model.CanonicalConfig {
	doc, err := readDocument(path)
	if err != nil {
		logger.Warn("config unreadable, using built-in defaults", "path", path, "error", err)
		doc = DefaultDocument()
	}
	return Canonicalize(doc)
}

// readDocument parses the file at path into a generic document. The wire
// format is JSON; .yaml/.yml paths are decoded with the YAML parser into
// the same shape.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("empty document")
	}
	return doc, nil
}

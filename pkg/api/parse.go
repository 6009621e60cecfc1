package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadWorkflow reads a workflow YAML file, sets FilePath, and validates it.
func LoadWorkflow(filename string) (*Workflow, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}

	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing workflow file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	w.FilePath = absPath

	if w.HTTPTimeout == "" {
		w.HTTPTimeout = DefaultHTTPTimeout
	}

	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("validating workflow %s: %w", filename, err)
	}

	return &w, nil
}

package api

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadInstances_Valid(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "instances.yaml")
	if err := os.WriteFile(f, []byte(`
instances:
  - name: api
    repository: acme/api
    context:
      team: backend
  - name: web
    repository: acme/web
`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadInstances(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(cfg.Instances))
	}
	if cfg.Instances[0].Name != "api" {
		t.Errorf("expected name 'api', got %q", cfg.Instances[0].Name)
	}
	if cfg.Instances[1].Repository != "acme/web" {
		t.Errorf("expected repository 'acme/web', got %q", cfg.Instances[1].Repository)
	}
	if cfg.Instances[0].Context["team"] != "backend" {
		t.Errorf("expected team=backend, got %v", cfg.Instances[0].Context["team"])
	}
}

func TestInstance_TaskContext(t *testing.T) {
	inst := Instance{
		Name:       "api",
		Repository: "acme/api",
		Context:    map[string]any{KeyRepository: "ignored/repo", "team": "backend"},
	}

	ctx := inst.TaskContext()
	if ctx[KeyRepository] != "acme/api" {
		t.Errorf("expected repository field to win, got %v", ctx[KeyRepository])
	}
	if ctx["team"] != "backend" {
		t.Errorf("expected team=backend, got %v", ctx["team"])
	}
	if inst.Context[KeyRepository] != "ignored/repo" {
		t.Error("TaskContext must not modify the instance context")
	}
}

func TestInstance_TaskContextWithoutRepository(t *testing.T) {
	ctx := Instance{Name: "api"}.TaskContext()
	if _, ok := ctx[KeyRepository]; ok {
		t.Errorf("expected no repository key, got %v", ctx[KeyRepository])
	}
}

func TestLoadInstances_EmptyList(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "instances.yaml")
	if err := os.WriteFile(f, []byte("instances: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadInstances(f)
	if err == nil {
		t.Fatal("expected error for empty instances list")
	}
	if !strings.Contains(err.Error(), "instances list is empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInstances_MissingName(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "instances.yaml")
	if err := os.WriteFile(f, []byte(`
instances:
  - repository: acme/api
`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadInstances(f)
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInstances_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "instances.yaml")
	if err := os.WriteFile(f, []byte(`
instances:
  - name: api
  - name: api
`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadInstances(f)
	if err == nil {
		t.Fatal("expected error for duplicate names")
	}
	if !strings.Contains(err.Error(), "duplicate name") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInstances_FileNotFound(t *testing.T) {
	_, err := LoadInstances("/nonexistent/path/instances.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading instances file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInstances_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "instances.yaml")
	if err := os.WriteFile(f, []byte("{{invalid yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadInstances(f)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing instances file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

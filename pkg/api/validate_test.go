package api

import (
	"strings"
	"testing"
)

func TestValidate_DefaultWorkflow(t *testing.T) {
	w := DefaultWorkflow()
	if err := w.Validate(); err != nil {
		t.Fatalf("expected default workflow to be valid, got: %v", err)
	}

	want := []string{"fetch_pr_data", "generate_release_notes", "send_to_slack", "final_validation"}
	if len(w.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(w.Steps))
	}
	for i, name := range want {
		if w.Steps[i].Name != name {
			t.Errorf("step %d: expected %q, got %q", i, name, w.Steps[i].Name)
		}
		if i > 0 && (len(w.Steps[i].DependsOn) != 1 || w.Steps[i].DependsOn[0] != want[i-1]) {
			t.Errorf("step %q: expected dependency on %q, got %v", name, want[i-1], w.Steps[i].DependsOn)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		w       Workflow
		wantErr string
	}{
		{
			name:    "empty",
			w:       Workflow{},
			wantErr: "no steps",
		},
		{
			name:    "missing name",
			w:       Workflow{Steps: []StepConfig{{Type: StepTypeFormatNotes}}},
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			w: Workflow{Steps: []StepConfig{
				{Name: "a", Type: StepTypeFormatNotes},
				{Name: "a", Type: StepTypeConfirmDelivery},
			}},
			wantErr: "duplicate step name",
		},
		{
			name:    "unknown type",
			w:       Workflow{Steps: []StepConfig{{Name: "a", Type: "unknown"}}},
			wantErr: "unknown type",
		},
		{
			name: "config for wrong type",
			w: Workflow{Steps: []StepConfig{
				{Name: "a", Type: StepTypeConfirmDelivery, Fetch: &FetchConfig{}},
			}},
			wantErr: "fetch config is only valid",
		},
		{
			name: "empty exclude pattern",
			w: Workflow{Steps: []StepConfig{
				{Name: "a", Type: StepTypeFetchReleaseSource, Fetch: &FetchConfig{ExcludeBranches: []string{" "}}},
			}},
			wantErr: "empty pattern",
		},
		{
			name: "empty dependency",
			w: Workflow{Steps: []StepConfig{
				{Name: "a", Type: StepTypeConfirmDelivery, DependsOn: []string{""}},
			}},
			wantErr: "empty step name",
		},
		{
			name: "bad timeout",
			w: Workflow{HTTPTimeout: "soon", Steps: []StepConfig{
				{Name: "a", Type: StepTypeConfirmDelivery},
			}},
			wantErr: "httpTimeout",
		},
		{
			name: "negative timeout",
			w: Workflow{HTTPTimeout: "-1s", Steps: []StepConfig{
				{Name: "a", Type: StepTypeConfirmDelivery},
			}},
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_UnknownDependencyLeftToGraph(t *testing.T) {
	w := Workflow{Steps: []StepConfig{
		{Name: "a", Type: StepTypeConfirmDelivery, DependsOn: []string{"ghost"}},
	}}
	if err := w.Validate(); err != nil {
		t.Fatalf("dependency references are not checked here, got: %v", err)
	}
}

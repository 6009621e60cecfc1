package processing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/release-notes/pkg/api"
)

func writeContextFile(t *testing.T, content string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "context.yaml")
	if err := os.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadContextFile(t *testing.T) {
	f := writeContextFile(t, "repository: acme/api\nlimit: 5\n")

	values, err := LoadContextFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[api.KeyRepository] != "acme/api" {
		t.Errorf("expected repository=acme/api, got %v", values[api.KeyRepository])
	}
	if values["limit"] != 5 {
		t.Errorf("expected limit=5, got %v", values["limit"])
	}
}

func TestLoadContextFile_EmptyDocuments(t *testing.T) {
	for name, content := range map[string]string{
		"empty":   "",
		"null":    "~\n",
		"comment": "# nothing here\n",
	} {
		t.Run(name, func(t *testing.T) {
			values, err := LoadContextFile(writeContextFile(t, content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if values == nil || len(values) != 0 {
				t.Errorf("expected empty non-nil context, got %#v", values)
			}
		})
	}
}

func TestLoadContextFile_Errors(t *testing.T) {
	_, err := LoadContextFile("/nonexistent/context.yaml")
	if err == nil || !strings.Contains(err.Error(), "reading context file /nonexistent/context.yaml") {
		t.Fatalf("unexpected error for missing file: %v", err)
	}

	_, err = LoadContextFile(writeContextFile(t, "{{invalid"))
	if err == nil || !strings.Contains(err.Error(), "parsing context file") {
		t.Fatalf("unexpected error for invalid YAML: %v", err)
	}
}

func TestMergeContext(t *testing.T) {
	tests := []struct {
		name    string
		base    api.Values
		overlay api.Values
		want    api.Values
	}{
		{
			name:    "overlay wins on collision",
			base:    api.Values{api.KeyRepository: "acme/global", "limit": 5},
			overlay: api.Values{api.KeyRepository: "acme/local", "extra": "value"},
			want:    api.Values{api.KeyRepository: "acme/local", "limit": 5, "extra": "value"},
		},
		{
			name:    "nil base",
			overlay: api.Values{"key": "val"},
			want:    api.Values{"key": "val"},
		},
		{
			name: "nil overlay",
			base: api.Values{"key": "val"},
			want: api.Values{"key": "val"},
		},
		{
			name: "both nil",
			want: api.Values{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeContext(tt.base, tt.overlay)
			if got == nil {
				t.Fatal("expected non-nil map")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %q: expected %v, got %v", k, v, got[k])
				}
			}
		})
	}
}

func TestMergeContext_DoesNotModifyInputs(t *testing.T) {
	base := api.Values{"a": 1}
	overlay := api.Values{"a": 2}

	merged := MergeContext(base, overlay)
	merged["b"] = 3

	if base["a"] != 1 || overlay["a"] != 2 {
		t.Errorf("inputs modified: base=%v overlay=%v", base, overlay)
	}
	if _, ok := base["b"]; ok {
		t.Error("merged map aliases base")
	}
}

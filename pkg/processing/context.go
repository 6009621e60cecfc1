package processing

import (
	"fmt"
	"maps"
	"os"

	"github.com/systemstart/release-notes/pkg/api"
	"gopkg.in/yaml.v3"
)

// LoadContextFile reads the initial context handed to a workflow's root
// steps, e.g. {repository: acme/api}. An empty file yields an empty context.
func LoadContextFile(filename string) (api.Values, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file %s: %w", filename, err)
	}

	values := make(api.Values)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", filename, err)
	}
	if values == nil {
		values = make(api.Values)
	}
	return values, nil
}

// MergeContext returns a new map holding base with overlay applied on top.
// Neither argument is modified.
//
// The coordinator calls it with a root step's (empty) dependency outputs as
// base and the initial context as overlay, so only steps without
// dependencies see the initial context. RunInstances calls it with the
// global context as base and an instance's context as overlay.
func MergeContext(base, overlay api.Values) api.Values {
	merged := maps.Clone(base)
	if merged == nil {
		merged = make(api.Values, len(overlay))
	}
	maps.Copy(merged, overlay)
	return merged
}

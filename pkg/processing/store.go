package processing

import (
	"fmt"
	"maps"

	"github.com/systemstart/release-notes/pkg/api"
)

// OutputStore records each completed step's outputs. Entries are written
// once and never overwritten.
type OutputStore struct {
	outputs map[string]api.Values
	order   []string
}

// NewOutputStore returns an empty store.
func NewOutputStore() *OutputStore {
	return &OutputStore{outputs: make(map[string]api.Values)}
}

// Put stores a copy of the outputs of step name.
func (s *OutputStore) Put(name string, outputs api.Values) error {
	if _, exists := s.outputs[name]; exists {
		return fmt.Errorf("outputs for step %q already recorded", name)
	}
	stored := make(api.Values, len(outputs))
	maps.Copy(stored, outputs)
	s.outputs[name] = stored
	s.order = append(s.order, name)
	return nil
}

// Get returns a copy of the outputs of step name.
func (s *OutputStore) Get(name string) (api.Values, bool) {
	outputs, ok := s.outputs[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(outputs), true
}

// Names returns the recorded step names in completion order.
func (s *OutputStore) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of recorded steps.
func (s *OutputStore) Len() int { return len(s.order) }

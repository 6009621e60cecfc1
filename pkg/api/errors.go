package api

import (
	"fmt"
	"strings"
)

// ConfigurationError reports every required environment variable or secret
// that is absent.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment variables or secrets: %s", strings.Join(e.Missing, ", "))
}

// SourceFetchError is returned when the hosting API answers with a non-success status.
type SourceFetchError struct {
	StatusCode int
	Body       string
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source fetch failed with status %d: %s", e.StatusCode, e.Body)
}

// DeliveryError is returned when the chat webhook answers with a non-success status.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed with status %d: %s", e.StatusCode, e.Body)
}

// MissingInputError names a required input key absent from a step's inputs.
type MissingInputError struct {
	Step string
	Key  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input %q is required for step %q", e.Key, e.Step)
}

// MalformedInputError reports step input that could not be parsed into the
// expected shape.
type MalformedInputError struct {
	Step string
	Key  string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("step %q: malformed input %q: %v", e.Step, e.Key, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// GraphError reports a dependency graph in which some steps can never run.
type GraphError struct {
	Reason string
	Steps  []string
}

func (e *GraphError) Error() string {
	if len(e.Steps) == 0 {
		return "invalid dependency graph: " + e.Reason
	}
	return fmt.Sprintf("invalid dependency graph: %s: %s", e.Reason, strings.Join(e.Steps, ", "))
}

package api

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var validStepTypes = map[string]bool{
	StepTypeFetchReleaseSource: true,
	StepTypeFormatNotes:        true,
	StepTypeDeliverToChannel:   true,
	StepTypeConfirmDelivery:    true,
}

// Validate checks the workflow configuration for errors. Dependency
// references are checked by the coordinator, which reports them as a
// GraphError.
func (w *Workflow) Validate() error {
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow has no steps")
	}

	if w.HTTPTimeout != "" {
		d, err := time.ParseDuration(w.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("httpTimeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("httpTimeout must be positive, got %s", w.HTTPTimeout)
		}
	}

	names := make(map[string]int)

	for i, step := range w.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !validStepTypes[step.Type] {
			valid := make([]string, 0, len(validStepTypes))
			for k := range validStepTypes {
				valid = append(valid, k)
			}
			sort.Strings(valid)
			return fmt.Errorf("step %q: unknown type %q (valid: %s)", step.Name, step.Type, strings.Join(valid, ", "))
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

// HTTPTimeoutDuration returns the parsed HTTP timeout, falling back to the default.
func (w *Workflow) HTTPTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(w.HTTPTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultHTTPTimeout)
	return d
}

func validateStepConfig(step StepConfig) error {
	if step.Fetch != nil && step.Type != StepTypeFetchReleaseSource {
		return fmt.Errorf("fetch config is only valid for %s steps", StepTypeFetchReleaseSource)
	}
	if step.Format != nil && step.Type != StepTypeFormatNotes {
		return fmt.Errorf("format config is only valid for %s steps", StepTypeFormatNotes)
	}
	if step.Deliver != nil && step.Type != StepTypeDeliverToChannel {
		return fmt.Errorf("deliver config is only valid for %s steps", StepTypeDeliverToChannel)
	}
	if step.Confirm != nil && step.Type != StepTypeConfirmDelivery {
		return fmt.Errorf("confirm config is only valid for %s steps", StepTypeConfirmDelivery)
	}

	if step.Fetch != nil {
		for _, pattern := range step.Fetch.ExcludeBranches {
			if strings.TrimSpace(pattern) == "" {
				return fmt.Errorf("fetch.excludeBranches contains an empty pattern")
			}
		}
	}

	for _, dep := range step.DependsOn {
		if dep == "" {
			return fmt.Errorf("dependsOn contains an empty step name")
		}
	}
	return nil
}

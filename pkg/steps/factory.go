package steps

import (
	"fmt"

	"github.com/systemstart/release-notes/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig, deps Deps) (Step, error) {
	switch cfg.Type {
	case api.StepTypeFetchReleaseSource:
		return NewFetchStep(cfg.Name, cfg.Fetch, deps)
	case api.StepTypeFormatNotes:
		return NewFormatStep(cfg.Name, cfg.Format)
	case api.StepTypeDeliverToChannel:
		return NewDeliverStep(cfg.Name, cfg.Deliver, deps), nil
	case api.StepTypeConfirmDelivery:
		return NewConfirmStep(cfg.Name, cfg.Confirm), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
}

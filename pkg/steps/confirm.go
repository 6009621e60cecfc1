package steps

import (
	"context"
	"log/slog"

	"github.com/systemstart/release-notes/pkg/api"
)

const defaultConfirmMessage = "release notes sent successfully"

type confirmStep struct {
	name    string
	message string
}

// NewConfirmStep creates a confirm-delivery step. It only logs the outcome
// reported by its dependencies and never fails.
func NewConfirmStep(name string, cfg *api.ConfirmConfig) Step {
	s := &confirmStep{name: name, message: defaultConfirmMessage}
	if cfg != nil && cfg.Message != "" {
		s.message = cfg.Message
	}
	return s
}

func (s *confirmStep) Name() string { return s.name }

func (s *confirmStep) RequiredSecrets() []string { return nil }

func (s *confirmStep) Run(_ context.Context, inputs api.Values) (api.Values, error) {
	attrs := []any{"step", s.name}
	if delivered, ok := inputs[api.KeyDelivered].(bool); ok {
		attrs = append(attrs, "delivered", delivered)
	}
	if status, ok := inputs[api.KeyStatusCode]; ok {
		attrs = append(attrs, "status", status)
	}
	slog.Info(s.message, attrs...)
	return api.Values{}, nil
}

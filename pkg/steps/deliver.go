package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/systemstart/release-notes/pkg/api"
	"github.com/systemstart/release-notes/pkg/config"
)

type deliverStep struct {
	name   string
	dryRun bool
	env    config.Env
	client *http.Client
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NewDeliverStep creates a deliver-to-channel step.
func NewDeliverStep(name string, cfg *api.DeliverConfig, deps Deps) Step {
	s := &deliverStep{name: name, env: deps.Env, client: deps.httpClient()}
	if cfg != nil {
		s.dryRun = cfg.DryRun
	}
	return s
}

func (s *deliverStep) Name() string { return s.name }

// RequiredSecrets is empty in dry-run mode, where nothing is posted.
func (s *deliverStep) RequiredSecrets() []string {
	if s.dryRun {
		return nil
	}
	return []string{api.EnvSlackWebhookURL}
}

func (s *deliverStep) Run(ctx context.Context, inputs api.Values) (api.Values, error) {
	message, err := requireText(s.name, inputs, api.KeyReleaseNotes)
	if err != nil {
		return nil, err
	}

	if s.dryRun {
		slog.Info("dry run, not posting release notes", "step", s.name, "message", message)
		return api.Values{api.KeyDelivered: false}, nil
	}

	status, err := s.post(ctx, message)
	if err != nil {
		return nil, err
	}

	slog.Info("release notes delivered", "step", s.name, "status", status)
	return api.Values{
		api.KeyDelivered:  true,
		api.KeyStatusCode: status,
	}, nil
}

func (s *deliverStep) post(ctx context.Context, message string) (int, error) {
	body, err := json.Marshal(webhookPayload{Text: message})
	if err != nil {
		return 0, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.env.Get(api.EnvSlackWebhookURL), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &api.DeliveryError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return resp.StatusCode, nil
}

package steps

import (
	"context"
	"net/http"

	"github.com/systemstart/release-notes/pkg/api"
	"github.com/systemstart/release-notes/pkg/config"
)

// Step is the interface all workflow steps implement.
type Step interface {
	Name() string
	RequiredSecrets() []string
	Run(ctx context.Context, inputs api.Values) (api.Values, error)
}

// EnvRequirer is implemented by steps that also need plain (non-secret)
// environment variables to be set.
type EnvRequirer interface {
	RequiredEnv() []string
}

// Required returns the union of the step's required environment variables
// and secrets, env vars first.
func Required(s Step) []string {
	var names []string
	if r, ok := s.(EnvRequirer); ok {
		names = append(names, r.RequiredEnv()...)
	}
	return append(names, s.RequiredSecrets()...)
}

// Deps carries the collaborators steps are built with.
type Deps struct {
	Env        config.Env
	HTTPClient *http.Client
}

func (d Deps) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return http.DefaultClient
}

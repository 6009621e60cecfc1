// Package config holds the environment snapshot that steps read their
// secrets from, and the credential check run before each step.
package config

import (
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/systemstart/release-notes/pkg/api"
)

// Env is a read-only snapshot of environment variables and secrets.
type Env struct {
	values map[string]string
}

// New returns an Env holding a copy of values.
func New(values map[string]string) Env {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Env{values: copied}
}

// FromEnviron builds an Env from KEY=VALUE pairs as returned by os.Environ.
func FromEnviron(environ []string) Env {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		values[k] = v
	}
	return Env{values: values}
}

// WithDotenv returns a copy of e extended with the variables from the given
// .env files. Variables already present in e take precedence.
func (e Env) WithDotenv(filenames ...string) (Env, error) {
	fromFiles, err := godotenv.Read(filenames...)
	if err != nil {
		return Env{}, err
	}
	merged := make(map[string]string, len(e.values)+len(fromFiles))
	for k, v := range fromFiles {
		merged[k] = v
	}
	for k, v := range e.values {
		merged[k] = v
	}
	return Env{values: merged}, nil
}

// Get returns the value of name, or "" when unset.
func (e Env) Get(name string) string {
	return e.values[name]
}

// Lookup returns the value of name and whether it is set to a non-empty value.
func (e Env) Lookup(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok && v != ""
}

// GetOr returns the value of name, or def when unset or empty.
func (e Env) GetOr(name, def string) string {
	if v, ok := e.Lookup(name); ok {
		return v
	}
	return def
}

// Validate checks that every name is set. All missing names are reported
// together, sorted, in a single *api.ConfigurationError.
func (e Env) Validate(names ...string) error {
	seen := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := e.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &api.ConfigurationError{Missing: missing}
}

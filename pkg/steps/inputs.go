package steps

import (
	"fmt"

	"github.com/systemstart/release-notes/pkg/api"
)

// requireText returns inputs[key] as a string. A missing or nil key is a
// *api.MissingInputError; any non-text value is a *api.MalformedInputError.
func requireText(step string, inputs api.Values, key string) (string, error) {
	v, ok := inputs[key]
	if !ok || v == nil {
		return "", &api.MissingInputError{Step: step, Key: key}
	}
	return asText(step, key, v)
}

// optionalText is like requireText but returns "" when the key is absent.
func optionalText(step string, inputs api.Values, key string) (string, error) {
	v, ok := inputs[key]
	if !ok || v == nil {
		return "", nil
	}
	return asText(step, key, v)
}

func asText(step, key string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", &api.MalformedInputError{Step: step, Key: key, Err: fmt.Errorf("expected text, got %T", v)}
	}
}

package steps

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/systemstart/release-notes/pkg/config"
)

// newTestServer starts an httptest server for handler and closes it when the test ends.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// testDeps returns step dependencies backed by the given environment values.
func testDeps(values map[string]string) Deps {
	return Deps{Env: config.New(values), HTTPClient: http.DefaultClient}
}

package querying

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"casenotify/internal/external"
)

// newTestRegistry starts an httptest server with the given routes and returns
// a registry client pointed at it. Routes are keyed by path; the query string
// is not part of the key.
func newTestRegistry(t *testing.T, routes map[string]http.HandlerFunc) (external.Registry, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	base := external.NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-"+t.Name(),
		external.RetryPolicy{MinWait: time.Millisecond, MaxWait: time.Millisecond},
		"CaseNotify-Test/1.0",
	)
	return external.NewRegistryClient(base, external.RegistryClientConfig{
		Name:    "test",
		BaseURL: server.URL,
	}), server
}

// respond returns a handler writing a fixed JSON body.
func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func probe(name string, err error) HealthProbe {
	return ProbeFunc{Label: name, Fn: func(context.Context) error { return err }}
}

func runHealth(t *testing.T, probes ...HealthProbe) (int, healthResponse) {
	t.Helper()
	srv := newTestServer(t)
	srv.HealthProbes = probes

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rec.Code, resp
}

func TestHandleHealth_NoProbes(t *testing.T) {
	code, resp := runHealth(t)
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Errorf("expected healthy 200, got %d %+v", code, resp)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	code, resp := runHealth(t, probe("openzaak", nil), probe("openklant", nil))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(resp.Components) != 2 || resp.Components["openzaak"].Status != "healthy" {
		t.Errorf("unexpected components %+v", resp.Components)
	}
}

func TestHandleHealth_OneUnhealthy(t *testing.T) {
	code, resp := runHealth(t, probe("openzaak", nil), probe("objecten", errors.New("connection refused")))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Components["objecten"].Message != "connection refused" {
		t.Errorf("unexpected component %+v", resp.Components["objecten"])
	}
	if resp.Components["openzaak"].Status != "healthy" {
		t.Errorf("healthy probe reported as %+v", resp.Components["openzaak"])
	}
}

func TestHandleHealth_PanickingProbe(t *testing.T) {
	panicking := ProbeFunc{Label: "notify", Fn: func(context.Context) error { panic("boom") }}

	code, resp := runHealth(t, panicking)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Components["notify"].Status != "unhealthy" {
		t.Errorf("unexpected component %+v", resp.Components["notify"])
	}
}

package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// healthCheckTimeout bounds the total time of all health probes.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one upstream the service depends on.
type HealthProbe interface {
	// Name identifies the probe in the response ("openzaak", "notify", ...).
	Name() string

	// Check returns an error when the upstream is unreachable. It must respect
	// the context deadline.
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to the HealthProbe interface.
type ProbeFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (p ProbeFunc) Name() string                    { return p.Label }
func (p ProbeFunc) Check(ctx context.Context) error { return p.Fn(ctx) }

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every registered probe concurrently and answers 200 when
// all are healthy, 503 otherwise. Probes that miss the deadline count as
// unhealthy.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	probes := s.HealthProbes
	if len(probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	// Each goroutine writes only its own slot.
	errs := make([]error, len(probes))
	done := make(chan struct{})

	go func() {
		defer close(done)
		var g errgroup.Group
		for i, probe := range probes {
			g.Go(func() (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						err = fmt.Errorf("probe panicked: %v", rec)
					}
					errs[i] = err
				}()
				return probe.Check(ctx)
			})
		}
		_ = g.Wait()
	}()

	timedOut := false
	select {
	case <-done:
	case <-ctx.Done():
		timedOut = true
	}

	components := make(map[string]componentStatus, len(probes))
	healthy := true
	for i, probe := range probes {
		var err error
		if timedOut {
			err = fmt.Errorf("health check timed out")
		} else {
			err = errs[i]
		}
		if err != nil {
			healthy = false
			components[probe.Name()] = componentStatus{Status: "unhealthy", Message: err.Error()}
			continue
		}
		components[probe.Name()] = componentStatus{Status: "healthy"}
	}

	if healthy {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Components: components})
		return
	}
	JSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Components: components})
}

// Package health aggregates readiness checks for the service's subsystems.
package health

import (
	"context"
	"sync"
	"time"
)

// Status is the outcome of one subsystem check.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker probes one subsystem. A nil error means healthy; a non-nil
// error's message becomes the status detail.
type Checker func(ctx context.Context) error

// Registry runs named checkers on demand, each under its own timeout so
// one stuck dependency cannot hang the whole health endpoint.
type Registry struct {
	mu      sync.RWMutex
	timeout time.Duration
	checks  []namedCheck
}

type namedCheck struct {
	name  string
	probe Checker
}

// NewRegistry creates a registry with a 2 second per-check timeout.
func NewRegistry() *Registry {
	return &Registry{timeout: 2 * time.Second}
}

// Register adds a named checker. Registration order is report order.
func (r *Registry) Register(name string, probe Checker) {
	r.mu.Lock()
	r.checks = append(r.checks, namedCheck{name: name, probe: probe})
	r.mu.Unlock()
}

// CheckAll runs every registered checker and reports the aggregate plus
// per-subsystem results.
func (r *Registry) CheckAll(ctx context.Context) (bool, []Status) {
	r.mu.RLock()
	checks := make([]namedCheck, len(r.checks))
	copy(checks, r.checks)
	timeout := r.timeout
	r.mu.RUnlock()

	healthy := true
	statuses := make([]Status, 0, len(checks))
	for _, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		err := c.probe(cctx)
		cancel()

		st := Status{Name: c.name, Healthy: err == nil}
		if err != nil {
			st.Detail = err.Error()
			healthy = false
		}
		statuses = append(statuses, st)
	}
	return healthy, statuses
}

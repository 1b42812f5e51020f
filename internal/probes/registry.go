package probes

import (
	"context"
	"sort"
	"sync"
)

// Registry manages readiness probes
type Registry struct {
	mu     sync.RWMutex
	probes map[string]Probe
}

// NewRegistry creates a new probe registry
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[string]Probe),
	}
}

// Register adds a probe under its name, replacing any probe with that name
func (r *Registry) Register(p Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[p.Name()] = p
}

// List returns the registered probe names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll runs every probe and returns the result per name
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error, len(r.probes))
	for name, p := range r.probes {
		results[name] = p.HealthCheck(ctx)
	}
	return results
}

// Healthy reports whether every result is nil
func Healthy(results map[string]error) bool {
	for _, err := range results {
		if err != nil {
			return false
		}
	}
	return true
}

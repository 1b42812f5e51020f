// Package probes tracks the dependencies checked by the readiness endpoint.
package probes

import (
	"context"
)

// Probe checks one dependency
type Probe interface {
	// Name identifies the dependency in readiness reports
	Name() string

	// HealthCheck returns nil when the dependency is usable
	HealthCheck(ctx context.Context) error
}

// funcProbe adapts a function to Probe
type funcProbe struct {
	name  string
	check func(ctx context.Context) error
}

// Func returns a probe that runs check
func Func(name string, check func(ctx context.Context) error) Probe {
	return &funcProbe{name: name, check: check}
}

func (p *funcProbe) Name() string {
	return p.name
}

func (p *funcProbe) HealthCheck(ctx context.Context) error {
	return p.check(ctx)
}

package registry

import (
	"sync/atomic"
)

// Holder publishes the current registry to concurrent readers. Reloads build
// a complete new Registry and Store it; readers never see a partial snapshot.
type Holder struct {
	current atomic.Pointer[Registry]
}

// NewHolder creates a holder serving reg
func NewHolder(reg *Registry) *Holder {
	h := &Holder{}
	h.current.Store(reg)
	return h
}

// Load returns the current registry
func (h *Holder) Load() *Registry {
	return h.current.Load()
}

// Store replaces the current registry and returns the previous one
func (h *Holder) Store(reg *Registry) *Registry {
	return h.current.Swap(reg)
}

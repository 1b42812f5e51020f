package api

import (
	"context"
	"net/http"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

type contextKey string

const registryContextKey contextKey = "registry"

// RegistryFromContext returns the registry pinned to the request
func RegistryFromContext(ctx context.Context) *registry.Registry {
	reg, ok := ctx.Value(registryContextKey).(*registry.Registry)
	if !ok {
		return nil
	}
	return reg
}

// ContextWithRegistry pins reg to the context
func ContextWithRegistry(ctx context.Context, reg *registry.Registry) context.Context {
	return context.WithValue(ctx, registryContextKey, reg)
}

// pinRegistry resolves the current registry once per request so every lookup
// in a handler sees the same revision, even across a concurrent reload
func (s *Server) pinRegistry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg := s.holder.Load()
		w.Header().Set("X-Content-Revision", reg.Revision())
		next.ServeHTTP(w, r.WithContext(ContextWithRegistry(r.Context(), reg)))
	})
}

// currentRegistry returns the pinned registry, falling back to the holder
func (s *Server) currentRegistry(r *http.Request) *registry.Registry {
	if reg := RegistryFromContext(r.Context()); reg != nil {
		return reg
	}
	return s.holder.Load()
}

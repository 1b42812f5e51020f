package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// ErrNoContent is returned by Load when nothing has been imported yet
var ErrNoContent = errors.New("no roadmap content imported")

// Repository persists roadmap content
type Repository interface {
	// ReplaceContent swaps all stored content for the registry's content
	ReplaceContent(ctx context.Context, reg *registry.Registry) error

	// Load builds a registry from the stored content
	Load(ctx context.Context) (*registry.Registry, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

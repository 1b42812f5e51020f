// Package refresh rebuilds the content registry periodically and on demand.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/learning-roadmaps/internal/content"
	"github.com/terra-clan/learning-roadmaps/internal/metrics"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// Purger drops cached renderings of the previous registry
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Notifier is told about every newly published revision
type Notifier interface {
	Notify(revision string)
}

// Option configures a Refresher
type Option func(*Refresher)

// WithPurger purges p after each successful reload
func WithPurger(p Purger) Option {
	return func(r *Refresher) {
		r.purger = p
	}
}

// WithNotifier notifies n after each successful reload
func WithNotifier(n Notifier) Option {
	return func(r *Refresher) {
		r.notifier = n
	}
}

// WithMetrics records reload results and registry size
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Refresher) {
		r.metrics = m
	}
}

// Refresher reloads content from a source and publishes it to a holder
type Refresher struct {
	source   content.Source
	holder   *registry.Holder
	interval time.Duration
	purger   Purger
	notifier Notifier
	metrics  *metrics.Metrics

	mu      sync.Mutex
	trigger chan struct{}
}

// NewRefresher creates a refresher. An interval of zero disables periodic
// reloads; Trigger and Reload still work.
func NewRefresher(source content.Source, holder *registry.Holder, interval time.Duration, opts ...Option) *Refresher {
	r := &Refresher{
		source:   source,
		holder:   holder,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the refresh worker in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// Trigger requests a reload without waiting for it. Requests made while one
// is already pending are merged.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// run is the main loop for the refresh worker
func (r *Refresher) run(ctx context.Context) {
	slog.Info("refresh worker started", "interval", r.interval)

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh worker stopped")
			return
		case <-tick:
			r.reloadAndLog(ctx, "interval")
		case <-r.trigger:
			r.reloadAndLog(ctx, "trigger")
		}
	}
}

func (r *Refresher) reloadAndLog(ctx context.Context, reason string) {
	if _, err := r.Reload(ctx); err != nil {
		slog.Error("content reload failed, keeping current registry",
			"reason", reason,
			"revision", revisionOf(r.holder.Load()),
			"error", err,
		)
	}
}

// Reload loads content from the source and publishes it. On failure the
// current registry stays in place.
func (r *Refresher) Reload(ctx context.Context) (*registry.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, err := r.source.Load(ctx)
	if err != nil {
		r.metrics.Reload(metrics.ReloadFailure)
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	logIssues(reg.Validate())

	previous := r.holder.Store(reg)
	stats := reg.Stats()
	r.metrics.Reload(metrics.ReloadSuccess)
	r.metrics.SetRegistryStats(stats)

	slog.Info("content reloaded",
		"revision", reg.Revision(),
		"previous_revision", revisionOf(previous),
		"roadmaps", stats.Roadmaps,
		"phases", stats.Phases,
		"topics", stats.Topics,
	)

	if r.purger != nil {
		if n, err := r.purger.Purge(ctx); err != nil {
			slog.Warn("failed to purge page cache", "error", err)
		} else {
			slog.Debug("page cache purged", "keys_deleted", n)
		}
	}

	if r.notifier != nil {
		r.notifier.Notify(reg.Revision())
	}

	return reg, nil
}

func logIssues(issues []registry.Issue) {
	var errs, warnings int
	for _, issue := range issues {
		if issue.Severity == registry.SeverityError {
			errs++
			slog.Warn("content issue", "issue", issue.String())
			continue
		}
		warnings++
		slog.Debug("content issue", "issue", issue.String())
	}

	if len(issues) > 0 {
		slog.Info("content validated", "errors", errs, "warnings", warnings)
	}
}

func revisionOf(reg *registry.Registry) string {
	if reg == nil {
		return ""
	}
	return reg.Revision()
}

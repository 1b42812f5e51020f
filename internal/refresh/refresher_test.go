package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-roadmaps/internal/models"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

type fakeSource struct {
	mu  sync.Mutex
	err error
}

func (s *fakeSource) Load(ctx context.Context) (*registry.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return registry.New(
		[]models.CatalogEntry{{Slug: "go", Title: "Go"}},
		map[string][]models.Phase{"go": {{ID: "phase-1", Title: "Basics", Topics: []models.Topic{{ID: "slices", Title: "Slices"}}}}},
	), nil
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type fakePurger struct {
	mu    sync.Mutex
	calls int
}

func (p *fakePurger) Purge(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return 3, nil
}

type chanNotifier chan string

func (n chanNotifier) Notify(revision string) {
	n <- revision
}

func TestReload(t *testing.T) {
	initial := registry.New(nil, nil)
	holder := registry.NewHolder(initial)
	purger := &fakePurger{}
	notified := make(chanNotifier, 1)

	r := NewRefresher(&fakeSource{}, holder, 0, WithPurger(purger), WithNotifier(notified))

	reg, err := r.Reload(context.Background())
	require.NoError(t, err)

	assert.Same(t, reg, holder.Load())
	assert.NotEqual(t, initial.Revision(), reg.Revision())
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, reg.Revision(), <-notified)
}

func TestReloadFailureKeepsRegistry(t *testing.T) {
	initial := registry.New(nil, nil)
	holder := registry.NewHolder(initial)
	purger := &fakePurger{}
	source := &fakeSource{}
	source.fail(errors.New("catalog.yaml: permission denied"))

	r := NewRefresher(source, holder, 0, WithPurger(purger))

	_, err := r.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Same(t, initial, holder.Load())
	assert.Zero(t, purger.calls)
}

func TestTriggerReloads(t *testing.T) {
	holder := registry.NewHolder(registry.New(nil, nil))
	notified := make(chanNotifier, 1)
	r := NewRefresher(&fakeSource{}, holder, 0, WithNotifier(notified))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	r.Trigger()

	select {
	case rev := <-notified:
		assert.Equal(t, holder.Load().Revision(), rev)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not reload")
	}
}

func TestIntervalReloads(t *testing.T) {
	holder := registry.NewHolder(registry.New(nil, nil))
	notified := make(chanNotifier, 4)
	r := NewRefresher(&fakeSource{}, holder, 10*time.Millisecond, WithNotifier(notified))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-notified:
		case <-time.After(2 * time.Second):
			t.Fatal("interval did not reload")
		}
	}
}

func TestTriggerMergesPendingRequests(t *testing.T) {
	r := NewRefresher(&fakeSource{}, registry.NewHolder(nil), 0)

	r.Trigger()
	r.Trigger()
	r.Trigger()

	assert.Len(t, r.trigger, 1)
}

func TestReloadFromEmptyHolder(t *testing.T) {
	holder := registry.NewHolder(nil)
	r := NewRefresher(&fakeSource{}, holder, 0)

	_, err := r.Reload(context.Background())
	require.NoError(t, err)
	require.NotNil(t, holder.Load())

	_, ok := holder.Load().TopicByID("go", "phase-1", "slices")
	assert.True(t, ok)
}

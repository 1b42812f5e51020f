package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-roadmaps/internal/api"
	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/models"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

const adminKey = "sk_admin_client_test"

type stubReloader struct {
	holder *registry.Holder
}

func (s *stubReloader) Reload(ctx context.Context) (*registry.Registry, error) {
	reg := testRegistry()
	s.holder.Store(reg)
	return reg, nil
}

func testRegistry() *registry.Registry {
	catalog := []models.CatalogEntry{
		{Slug: "javascript", Title: "JavaScript", Tags: []string{"web"}},
		{Slug: "go", Title: "Go", Tags: []string{"backend"}, ComingSoon: true},
	}
	phases := map[string][]models.Phase{
		"javascript": {
			{ID: "phase-1", Title: "Foundations", Topics: []models.Topic{
				{ID: "closures", Title: "Closures", CommonMistakes: []string{"capturing loop variables"}},
			}},
		},
	}
	return registry.New(catalog, phases)
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	holder := registry.NewHolder(testRegistry())
	srv := api.NewServer(config.ServerConfig{}, config.AdminConfig{APIKey: adminKey}, api.Deps{
		Holder:   holder,
		Reloader: &stubReloader{holder: holder},
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, opts...)
}

func TestClientBrowse(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		roadmaps, err := c.ListRoadmaps(ctx, "")
		require.NoError(t, err)
		require.Len(t, roadmaps, 2)
		assert.Equal(t, "javascript", roadmaps[0].Slug)
		assert.True(t, roadmaps[0].Navigable)
		assert.Equal(t, 1, roadmaps[0].TopicCount)
		assert.False(t, roadmaps[1].Navigable)
	})

	t.Run("list by tag", func(t *testing.T) {
		roadmaps, err := c.ListRoadmaps(ctx, "backend")
		require.NoError(t, err)
		require.Len(t, roadmaps, 1)
		assert.Equal(t, "go", roadmaps[0].Slug)
	})

	t.Run("roadmap", func(t *testing.T) {
		rm, err := c.GetRoadmap(ctx, "javascript")
		require.NoError(t, err)
		assert.Equal(t, 1, rm.PhaseCount)
		assert.False(t, rm.ContentPending)
		require.Len(t, rm.Phases, 1)
		assert.Equal(t, "Foundations", rm.Phases[0].Title)
	})

	t.Run("pending roadmap", func(t *testing.T) {
		rm, err := c.GetRoadmap(ctx, "go")
		require.NoError(t, err)
		assert.True(t, rm.ContentPending)
		assert.Empty(t, rm.Phases)
	})

	t.Run("phase", func(t *testing.T) {
		phase, err := c.GetPhase(ctx, "javascript", "phase-1")
		require.NoError(t, err)
		assert.Len(t, phase.Topics, 1)
	})

	t.Run("topic", func(t *testing.T) {
		topic, err := c.GetTopic(ctx, "javascript", "phase-1", "closures")
		require.NoError(t, err)
		assert.Equal(t, []string{"capturing loop variables"}, topic.CommonMistakes)
	})

	t.Run("search", func(t *testing.T) {
		hits, err := c.Search(ctx, "clos", 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "closures", hits[0].TopicID)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, c.Health(ctx))
	})
}

func TestClientNotFound(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetRoadmap(ctx, "cobol")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetPhase(ctx, "javascript", "phase-9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetTopic(ctx, "go", "phase-1", "closures")
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestClientSearchValidation(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Search(context.Background(), "", 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClientReload(t *testing.T) {
	ctx := context.Background()

	t.Run("without key", func(t *testing.T) {
		_, err := newTestClient(t).Reload(ctx)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "missing_api_key", apiErr.Code)
	})

	t.Run("with key", func(t *testing.T) {
		res, err := newTestClient(t, WithAPIKey(adminKey)).Reload(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Revision)
		assert.NotEqual(t, res.PreviousRevision, res.Revision)
		assert.Equal(t, 2, res.Stats.Roadmaps)
		assert.Equal(t, 1, res.Stats.Topics)
	})
}

func TestClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := NewClient(ts.URL, WithTimeout(time.Second)).Health(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "http_error", apiErr.Code)
}

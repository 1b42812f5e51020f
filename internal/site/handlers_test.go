package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

type memoryCache struct {
	pages map[string][]byte
	fills int
}

func (m *memoryCache) Fetch(_ context.Context, revision, path string, fill func() ([]byte, error)) ([]byte, error) {
	key := revision + ":" + path
	if body, ok := m.pages[key]; ok {
		return body, nil
	}
	body, err := fill()
	if err != nil {
		return nil, err
	}
	m.fills++
	m.pages[key] = body
	return body, nil
}

func setupRouter(t *testing.T, cache PageCache) (http.Handler, *registry.Holder) {
	t.Helper()

	renderer, err := NewRenderer(false)
	require.NoError(t, err)

	holder := registry.NewHolder(fixtureRegistry())
	h := NewHandler(holder, renderer, cache)

	r := chi.NewRouter()
	h.Routes(r)
	r.NotFound(h.NotFound)
	return r, holder
}

func get(router http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPageRoutes(t *testing.T) {
	router, _ := setupRouter(t, nil)

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"index", "/", http.StatusOK, "Learning Roadmaps"},
		{"roadmap", "/roadmaps/javascript", http.StatusOK, "2 phases · 3 topics"},
		{"pending roadmap", "/roadmaps/salesforce", http.StatusOK, "Content coming soon."},
		{"phase", "/roadmaps/javascript/phase-3", http.StatusOK, "Async"},
		{"topic", "/roadmaps/javascript/phase-3/promises", http.StatusOK, "<h1>Promises</h1>"},
		{"unknown roadmap", "/roadmaps/cobol", http.StatusNotFound, "Not found"},
		{"unknown phase", "/roadmaps/javascript/phase-9", http.StatusNotFound, "Not found"},
		{"unknown topic", "/roadmaps/javascript/phase-3/generators", http.StatusNotFound, "Not found"},
		{"unknown route", "/nowhere", http.StatusNotFound, "/nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestPageETag(t *testing.T) {
	router, holder := setupRouter(t, nil)

	rec := get(router, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+holder.Load().Revision()+`"`, etag)

	rec = get(router, "/", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	// a reload changes the revision and invalidates the tag
	holder.Store(fixtureRegistry())
	rec = get(router, "/", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))

	rec = get(router, "/roadmaps/cobol", nil)
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestPageCache(t *testing.T) {
	cache := &memoryCache{pages: map[string][]byte{}}
	router, holder := setupRouter(t, cache)

	first := get(router, "/roadmaps/javascript", nil)
	second := get(router, "/roadmaps/javascript", nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, cache.fills)

	get(router, "/roadmaps/cobol", nil)
	assert.Equal(t, 1, cache.fills, "not found pages bypass the cache")

	holder.Store(fixtureRegistry())
	get(router, "/roadmaps/javascript", nil)
	assert.Equal(t, 2, cache.fills, "new revision renders again")
}

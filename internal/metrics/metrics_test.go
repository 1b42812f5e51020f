package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

func TestMetricsRecord(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveRequest("/api/v1/roadmaps/{slug}", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("/api/v1/roadmaps/{slug}", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.SetRegistryStats(registry.Stats{Roadmaps: 3, Phases: 4, Topics: 7})
	m.Reload(ReloadSuccess)
	m.Reload(ReloadFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/roadmaps/{slug}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.roadmaps))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.phases))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.topics))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues(ReloadFailure)))
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.Reload(ReloadSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `roadmaps_content_reloads_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.CacheHit()
		m.CacheMiss()
		m.SetRegistryStats(registry.Stats{})
		m.Reload(ReloadSuccess)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

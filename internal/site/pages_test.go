package site

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/roadmaps/javascript", RoadmapPath("javascript"))
	assert.Equal(t, "/roadmaps/javascript/phase-1", PhasePath("javascript", "phase-1"))
	assert.Equal(t, "/roadmaps/javascript/phase-1/a%20b", TopicPath("javascript", "phase-1", "a b"))
}

func TestRoadmapPage(t *testing.T) {
	reg := fixtureRegistry()

	page, ok := RoadmapPage(reg, "javascript")
	require.True(t, ok)
	data := page.Data.(roadmapData)
	assert.False(t, data.Pending)
	assert.Equal(t, 3, data.TopicCount)

	page, ok = RoadmapPage(reg, "salesforce")
	require.True(t, ok)
	assert.True(t, page.Data.(roadmapData).Pending)

	page, ok = RoadmapPage(reg, "react")
	require.True(t, ok)
	assert.True(t, page.Data.(roadmapData).Pending)

	_, ok = RoadmapPage(reg, "missing")
	assert.False(t, ok)
}

func TestTopicPageNeighbours(t *testing.T) {
	reg := fixtureRegistry()

	tests := []struct {
		phase, topic string
		prev, next   string
	}{
		{"phase-1", "variables", "", "/roadmaps/javascript/phase-1/types"},
		{"phase-1", "types", "/roadmaps/javascript/phase-1/variables", "/roadmaps/javascript/phase-3/promises"},
		{"phase-3", "promises", "/roadmaps/javascript/phase-1/types", ""},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			page, ok := TopicPage(reg, "javascript", tt.phase, tt.topic)
			require.True(t, ok)
			data := page.Data.(topicData)

			if tt.prev == "" {
				assert.Nil(t, data.Prev)
			} else {
				require.NotNil(t, data.Prev)
				assert.Equal(t, tt.prev, data.Prev.Href)
			}
			if tt.next == "" {
				assert.Nil(t, data.Next)
			} else {
				require.NotNil(t, data.Next)
				assert.Equal(t, tt.next, data.Next.Href)
			}
		})
	}
}

func TestTopicPageMissing(t *testing.T) {
	reg := fixtureRegistry()

	_, ok := TopicPage(reg, "javascript", "phase-3", "nope")
	assert.False(t, ok)
	_, ok = TopicPage(reg, "javascript", "phase-9", "promises")
	assert.False(t, ok)
	_, ok = TopicPage(reg, "nope", "phase-3", "promises")
	assert.False(t, ok)
}

func TestRenderPages(t *testing.T) {
	reg := fixtureRegistry()
	renderer, err := NewRenderer(false)
	require.NoError(t, err)

	t.Run("index", func(t *testing.T) {
		body, err := renderer.RenderBytes(IndexPage(reg), reg.Revision())
		require.NoError(t, err)
		html := string(body)

		assert.Contains(t, html, `href="/roadmaps/javascript"`)
		assert.Contains(t, html, "2 phases · 3 topics")
		assert.Contains(t, html, "Content coming soon · 0 topics")
		assert.Contains(t, html, "Coming soon")
		assert.NotContains(t, html, `href="/roadmaps/react"`)
		assert.NotContains(t, html, `href="/roadmaps/salesforce"`)
		assert.NotContains(t, html, "/ws/livereload")
	})

	t.Run("topic", func(t *testing.T) {
		page, ok := TopicPage(reg, "javascript", "phase-3", "promises")
		require.True(t, ok)
		body, err := renderer.RenderBytes(page, reg.Revision())
		require.NoError(t, err)
		html := string(body)

		assert.Contains(t, html, "<h1>Promises</h1>")
		assert.Contains(t, html, "<em>once</em>")
		assert.Contains(t, html, "v =&gt; v &lt; 2")
		assert.Contains(t, html, "<code>promiseAll</code>")
		assert.Contains(t, html, "Forgetting to return")
		assert.Contains(t, html, "all vs allSettled?")
	})

	t.Run("not found", func(t *testing.T) {
		page := NotFoundPage("/roadmaps/<script>")
		assert.Equal(t, http.StatusNotFound, page.Status)
		body, err := renderer.RenderBytes(page, reg.Revision())
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(body), "<script>"))
	})

	t.Run("live reload script", func(t *testing.T) {
		live, err := NewRenderer(true)
		require.NoError(t, err)
		body, err := live.RenderBytes(IndexPage(reg), reg.Revision())
		require.NoError(t, err)
		assert.Contains(t, string(body), "/ws/livereload")
		assert.Contains(t, string(body), reg.Revision())
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := renderer.RenderBytes(Page{Template: "nope"}, "")
		assert.Error(t, err)
	})
}

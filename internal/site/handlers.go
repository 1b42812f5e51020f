package site

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// PageCache stores rendered pages per registry revision
type PageCache interface {
	Fetch(ctx context.Context, revision, path string, fill func() ([]byte, error)) ([]byte, error)
}

// Handler serves the HTML pages
type Handler struct {
	holder   *registry.Holder
	renderer *Renderer
	cache    PageCache
}

// NewHandler creates a page handler. cache may be nil.
func NewHandler(holder *registry.Holder, renderer *Renderer, cache PageCache) *Handler {
	return &Handler{holder: holder, renderer: renderer, cache: cache}
}

// Routes mounts the page routes on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/roadmaps/{slug}", h.handleRoadmap)
	r.Get("/roadmaps/{slug}/{phaseId}", h.handlePhase)
	r.Get("/roadmaps/{slug}/{phaseId}/{topicId}", h.handleTopic)
}

// NotFound renders the 404 page; usable as the router's NotFound handler
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.holder.Load(), NotFoundPage(r.URL.Path))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	reg := h.holder.Load()
	h.serve(w, r, reg, IndexPage(reg))
}

func (h *Handler) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	reg := h.holder.Load()
	page, ok := RoadmapPage(reg, chi.URLParam(r, "slug"))
	if !ok {
		page = NotFoundPage(r.URL.Path)
	}
	h.serve(w, r, reg, page)
}

func (h *Handler) handlePhase(w http.ResponseWriter, r *http.Request) {
	reg := h.holder.Load()
	page, ok := PhasePage(reg, chi.URLParam(r, "slug"), chi.URLParam(r, "phaseId"))
	if !ok {
		page = NotFoundPage(r.URL.Path)
	}
	h.serve(w, r, reg, page)
}

func (h *Handler) handleTopic(w http.ResponseWriter, r *http.Request) {
	reg := h.holder.Load()
	page, ok := TopicPage(reg,
		chi.URLParam(r, "slug"),
		chi.URLParam(r, "phaseId"),
		chi.URLParam(r, "topicId"),
	)
	if !ok {
		page = NotFoundPage(r.URL.Path)
	}
	h.serve(w, r, reg, page)
}

// serve renders page, going through the cache for successful pages. Pages are
// immutable per revision, so the revision doubles as the ETag.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, reg *registry.Registry, page Page) {
	etag := `"` + reg.Revision() + `"`
	if page.Status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	render := func() ([]byte, error) {
		return h.renderer.RenderBytes(page, reg.Revision())
	}

	var body []byte
	var err error
	if h.cache != nil && page.Status == http.StatusOK {
		body, err = h.cache.Fetch(r.Context(), reg.Revision(), r.URL.Path, render)
	} else {
		body, err = render()
	}
	if err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "template", page.Template, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page.Status == http.StatusOK {
		w.Header().Set("ETag", etag)
	}
	w.WriteHeader(page.Status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed to write page", "path", r.URL.Path, "error", err)
	}
}

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
	"github.com/terra-clan/learning-roadmaps/internal/site"
)

// Catalog handlers: hierarchical browsing of roadmaps/phases/topics

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	cards := site.BuildCards(s.currentRegistry(r))

	if tag := r.URL.Query().Get("tag"); tag != "" {
		filtered := make([]site.Card, 0, len(cards))
		for _, c := range cards {
			if c.HasTag(tag) {
				filtered = append(filtered, c)
			}
		}
		cards = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roadmaps": cards,
		"total":    len(cards),
	})
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	reg := s.currentRegistry(r)
	slug := chi.URLParam(r, "slug")

	detail, ok := reg.RoadmapDetail(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "roadmap not found")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	phases, ok := s.currentRegistry(r).RoadmapPhases(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no phases registered for roadmap")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"phases": phases,
		"total":  len(phases),
	})
}

func (s *Server) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	phaseID := chi.URLParam(r, "phaseId")

	phase, ok := s.currentRegistry(r).PhaseByID(slug, phaseID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "phase not found")
		return
	}
	respondJSON(w, http.StatusOK, phase)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	phaseID := chi.URLParam(r, "phaseId")
	topicID := chi.URLParam(r, "topicId")

	topic, ok := s.currentRegistry(r).TopicByID(slug, phaseID, topicID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "topic not found")
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "q is required")
		return
	}

	limit := defaultSearchLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	hits := s.currentRegistry(r).Search(query, limit)
	if hits == nil {
		hits = []registry.SearchHit{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query": query,
		"hits":  hits,
		"total": len(hits),
	})
}

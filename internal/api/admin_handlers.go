package api

import (
	"log/slog"
	"net/http"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// Admin handlers: content reload and validation report

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	previous := s.holder.Load().Revision()

	reg, err := s.reloader.Reload(r.Context())
	if err != nil {
		slog.Error("admin reload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}

	issues := reg.Validate()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"revision":         reg.Revision(),
		"previousRevision": previous,
		"stats":            reg.Stats(),
		"issues":           len(issues),
		"hasErrors":        registry.HasErrors(issues),
	})
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	reg := s.currentRegistry(r)
	issues := reg.Validate()
	if issues == nil {
		issues = []registry.Issue{}
	}

	var errs, warnings int
	for _, i := range issues {
		if i.Severity == registry.SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"revision": reg.Revision(),
		"issues":   issues,
		"errors":   errs,
		"warnings": warnings,
	})
}

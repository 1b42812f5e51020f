package registry

import (
	"strings"
)

// HitKind says what a search hit points at
type HitKind string

const (
	HitRoadmap HitKind = "roadmap"
	HitPhase   HitKind = "phase"
	HitTopic   HitKind = "topic"
)

// SearchHit is one match returned by Search
type SearchHit struct {
	Kind    HitKind `json:"kind"`
	Slug    string  `json:"slug"`
	PhaseID string  `json:"phaseId,omitempty"`
	TopicID string  `json:"topicId,omitempty"`
	Title   string  `json:"title"`
}

// Search does a case-insensitive substring match over roadmap titles and
// tags, phase titles and topic titles. Hits come back in catalog order, then
// phase order, then topic order. Coming-soon roadmaps only match on metadata.
func (r *Registry) Search(query string, limit int) []SearchHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []SearchHit
	add := func(h SearchHit) bool {
		hits = append(hits, h)
		return limit > 0 && len(hits) >= limit
	}

	for _, e := range r.catalog {
		if matches(q, e.Title) || matchesAny(q, e.Tags) {
			if add(SearchHit{Kind: HitRoadmap, Slug: e.Slug, Title: e.Title}) {
				return hits
			}
		}
		if e.ComingSoon {
			continue
		}

		for _, p := range r.phases[e.Slug] {
			if matches(q, p.Title) {
				if add(SearchHit{Kind: HitPhase, Slug: e.Slug, PhaseID: p.ID, Title: p.Title}) {
					return hits
				}
			}
			for _, t := range p.Topics {
				if matches(q, t.Title) {
					if add(SearchHit{Kind: HitTopic, Slug: e.Slug, PhaseID: p.ID, TopicID: t.ID, Title: t.Title}) {
						return hits
					}
				}
			}
		}
	}

	return hits
}

func matches(q, s string) bool {
	return strings.Contains(strings.ToLower(s), q)
}

func matchesAny(q string, values []string) bool {
	for _, v := range values {
		if matches(q, v) {
			return true
		}
	}
	return false
}

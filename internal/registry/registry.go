// Package registry holds the immutable roadmap catalog and phase/topic
// registry, and the lookups the page and API layers resolve content through.
//
// A Registry is built once and never modified. Lookups report absence with a
// boolean rather than an error so templates can branch on it directly.
package registry

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/terra-clan/learning-roadmaps/internal/models"
)

// Registry is a read-only snapshot of all roadmap content
type Registry struct {
	revision string
	catalog  []models.CatalogEntry
	phases   map[string][]models.Phase
}

// New builds a registry from a catalog in declaration order and a slug→phases
// map. Inputs are deep-copied; later changes to them do not affect the
// registry.
func New(catalog []models.CatalogEntry, phases map[string][]models.Phase) *Registry {
	r := &Registry{
		revision: uuid.New().String(),
		catalog:  make([]models.CatalogEntry, len(catalog)),
		phases:   make(map[string][]models.Phase, len(phases)),
	}
	for i, e := range catalog {
		e.Tags = slices.Clone(e.Tags)
		r.catalog[i] = e
	}
	for slug, list := range phases {
		r.phases[slug] = models.ClonePhases(list)
	}
	return r
}

// Revision identifies this snapshot; every build gets a fresh one
func (r *Registry) Revision() string {
	return r.revision
}

// AllRoadmaps returns every catalog entry, coming-soon placeholders included,
// in declaration order
func (r *Registry) AllRoadmaps() []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(r.catalog))
	for i, e := range r.catalog {
		e.Tags = slices.Clone(e.Tags)
		out[i] = e
	}
	return out
}

// RoadmapMeta returns the first catalog entry whose slug equals slug
func (r *Registry) RoadmapMeta(slug string) (models.CatalogEntry, bool) {
	for _, e := range r.catalog {
		if e.Slug == slug {
			e.Tags = slices.Clone(e.Tags)
			return e, true
		}
	}
	return models.CatalogEntry{}, false
}

// RoadmapPhases returns the ordered phases registered for slug. The result is
// a copy; changing it does not affect the registry.
func (r *Registry) RoadmapPhases(slug string) ([]models.Phase, bool) {
	phases, ok := r.phases[slug]
	if !ok {
		return nil, false
	}
	return models.ClonePhases(phases), true
}

// PhaseByID returns the phase with the given id within slug's roadmap
func (r *Registry) PhaseByID(slug, phaseID string) (models.Phase, bool) {
	phases, ok := r.phases[slug]
	if !ok {
		return models.Phase{}, false
	}
	for _, p := range phases {
		if p.ID == phaseID {
			return p.Clone(), true
		}
	}
	return models.Phase{}, false
}

// TopicByID returns the topic with the given id within a phase of slug's roadmap
func (r *Registry) TopicByID(slug, phaseID, topicID string) (models.Topic, bool) {
	phase, ok := r.PhaseByID(slug, phaseID)
	if !ok {
		return models.Topic{}, false
	}
	for _, t := range phase.Topics {
		if t.ID == topicID {
			return t, true
		}
	}
	return models.Topic{}, false
}

// Roadmap joins catalog metadata with phases. The boolean reports whether the
// catalog knows the slug; a catalog entry without phases yields nil Phases.
func (r *Registry) Roadmap(slug string) (models.Roadmap, bool) {
	meta, ok := r.RoadmapMeta(slug)
	if !ok {
		return models.Roadmap{}, false
	}
	phases, _ := r.RoadmapPhases(slug)
	return models.Roadmap{CatalogEntry: meta, Phases: phases}, true
}

// RoadmapDetail is Roadmap with phase and topic counts. A catalog entry
// without phases gets an empty list and ContentPending.
func (r *Registry) RoadmapDetail(slug string) (models.RoadmapDetail, bool) {
	roadmap, ok := r.Roadmap(slug)
	if !ok {
		return models.RoadmapDetail{}, false
	}
	_, found := r.phases[slug]
	if roadmap.Phases == nil {
		roadmap.Phases = []models.Phase{}
	}
	return models.RoadmapDetail{
		Roadmap:        roadmap,
		PhaseCount:     len(roadmap.Phases),
		TopicCount:     roadmap.TopicCount(),
		ContentPending: !found,
	}, true
}

// PhaseSlugs returns the slugs that have phases registered, sorted
func (r *Registry) PhaseSlugs() []string {
	slugs := make([]string, 0, len(r.phases))
	for slug := range r.phases {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Stats summarizes registry size
type Stats struct {
	Roadmaps int `json:"roadmaps"`
	Phases   int `json:"phases"`
	Topics   int `json:"topics"`
}

// Stats counts catalog entries, phases and topics
func (r *Registry) Stats() Stats {
	s := Stats{Roadmaps: len(r.catalog)}
	for _, phases := range r.phases {
		s.Phases += len(phases)
		s.Topics += models.CountTopics(phases)
	}
	return s
}

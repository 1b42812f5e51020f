package site

import (
	"net/http"
	"net/url"

	"github.com/terra-clan/learning-roadmaps/internal/models"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// Page is a resolved page ready to render
type Page struct {
	Template string
	Title    string
	Status   int
	Data     any
}

// NavLink points at a neighbouring topic
type NavLink struct {
	Title string
	Href  string
}

type indexData struct {
	Cards []Card
	Stats registry.Stats
}

type roadmapData struct {
	Roadmap    models.CatalogEntry
	Phases     []models.Phase
	TopicCount int
	Pending    bool
}

type phaseData struct {
	Roadmap models.CatalogEntry
	Phase   models.Phase
}

type topicData struct {
	Roadmap models.CatalogEntry
	Phase   models.Phase
	Topic   models.Topic
	Prev    *NavLink
	Next    *NavLink
}

type notFoundData struct {
	Path string
}

// RoadmapPath returns the page path of a roadmap
func RoadmapPath(slug string) string {
	return "/roadmaps/" + url.PathEscape(slug)
}

// PhasePath returns the page path of a phase
func PhasePath(slug, phaseID string) string {
	return RoadmapPath(slug) + "/" + url.PathEscape(phaseID)
}

// TopicPath returns the page path of a topic
func TopicPath(slug, phaseID, topicID string) string {
	return PhasePath(slug, phaseID) + "/" + url.PathEscape(topicID)
}

// IndexPage builds the landing page
func IndexPage(reg *registry.Registry) Page {
	return Page{
		Template: "index",
		Title:    "Learning Roadmaps",
		Status:   http.StatusOK,
		Data: indexData{
			Cards: BuildCards(reg),
			Stats: reg.Stats(),
		},
	}
}

// RoadmapPage builds a roadmap overview. A catalog entry without phases
// renders in a pending state rather than as not found.
func RoadmapPage(reg *registry.Registry, slug string) (Page, bool) {
	meta, ok := reg.RoadmapMeta(slug)
	if !ok {
		return Page{}, false
	}

	phases, found := reg.RoadmapPhases(slug)
	return Page{
		Template: "roadmap",
		Title:    meta.Title,
		Status:   http.StatusOK,
		Data: roadmapData{
			Roadmap:    meta,
			Phases:     phases,
			TopicCount: models.CountTopics(phases),
			Pending:    !found || meta.ComingSoon,
		},
	}, true
}

// PhasePage builds a phase page
func PhasePage(reg *registry.Registry, slug, phaseID string) (Page, bool) {
	meta, ok := reg.RoadmapMeta(slug)
	if !ok {
		return Page{}, false
	}
	phase, ok := reg.PhaseByID(slug, phaseID)
	if !ok {
		return Page{}, false
	}

	return Page{
		Template: "phase",
		Title:    phase.Title + " · " + meta.Title,
		Status:   http.StatusOK,
		Data:     phaseData{Roadmap: meta, Phase: phase},
	}, true
}

// TopicPage builds a topic page with links to the previous and next topic,
// crossing phase boundaries
func TopicPage(reg *registry.Registry, slug, phaseID, topicID string) (Page, bool) {
	meta, ok := reg.RoadmapMeta(slug)
	if !ok {
		return Page{}, false
	}
	phase, ok := reg.PhaseByID(slug, phaseID)
	if !ok {
		return Page{}, false
	}
	topic, ok := reg.TopicByID(slug, phaseID, topicID)
	if !ok {
		return Page{}, false
	}

	phases, _ := reg.RoadmapPhases(slug)
	prev, next := neighbours(slug, phases, phaseID, topicID)

	return Page{
		Template: "topic",
		Title:    topic.Title + " · " + meta.Title,
		Status:   http.StatusOK,
		Data: topicData{
			Roadmap: meta,
			Phase:   phase,
			Topic:   topic,
			Prev:    prev,
			Next:    next,
		},
	}, true
}

// NotFoundPage builds the 404 page
func NotFoundPage(path string) Page {
	return Page{
		Template: "notfound",
		Title:    "Not found",
		Status:   http.StatusNotFound,
		Data:     notFoundData{Path: path},
	}
}

// neighbours finds the topics before and after the given one in reading order
func neighbours(slug string, phases []models.Phase, phaseID, topicID string) (prev, next *NavLink) {
	type pos struct {
		phaseID string
		topic   models.Topic
	}

	var flat []pos
	for _, p := range phases {
		for _, t := range p.Topics {
			flat = append(flat, pos{phaseID: p.ID, topic: t})
		}
	}

	for i, p := range flat {
		if p.phaseID != phaseID || p.topic.ID != topicID {
			continue
		}
		if i > 0 {
			q := flat[i-1]
			prev = &NavLink{Title: q.topic.Title, Href: TopicPath(slug, q.phaseID, q.topic.ID)}
		}
		if i+1 < len(flat) {
			q := flat[i+1]
			next = &NavLink{Title: q.topic.Title, Href: TopicPath(slug, q.phaseID, q.topic.ID)}
		}
		return prev, next
	}

	return nil, nil
}

package site

import (
	"github.com/terra-clan/learning-roadmaps/internal/models"
)

// CatalogReader is the part of the registry the landing page needs
type CatalogReader interface {
	AllRoadmaps() []models.CatalogEntry
	RoadmapPhases(slug string) ([]models.Phase, bool)
}

// Card is one roadmap tile on the landing page
type Card struct {
	models.CatalogEntry
	Href           string `json:"href,omitempty"`
	Navigable      bool   `json:"navigable"`
	ContentPending bool   `json:"contentPending"` // listed in the catalog, no phases registered
	PhaseCount     int    `json:"phaseCount"`
	TopicCount     int    `json:"topicCount"`
}

// BuildCards derives one card per catalog entry, in catalog order.
// Coming-soon entries are decorative and skip the phase lookup entirely.
// Entries with no registered phases get zero counts and are not navigable.
func BuildCards(catalog CatalogReader) []Card {
	entries := catalog.AllRoadmaps()
	cards := make([]Card, 0, len(entries))

	for _, e := range entries {
		card := Card{CatalogEntry: e}

		if !e.ComingSoon {
			phases, ok := catalog.RoadmapPhases(e.Slug)
			if ok {
				card.PhaseCount = len(phases)
				card.TopicCount = models.CountTopics(phases)
				card.Navigable = true
				card.Href = RoadmapPath(e.Slug)
			} else {
				card.ContentPending = true
			}
		}

		cards = append(cards, card)
	}

	return cards
}

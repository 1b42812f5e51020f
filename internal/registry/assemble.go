package registry

import (
	"github.com/terra-clan/learning-roadmaps/internal/models"
)

// PhaseFragment is one authored piece of a phase. Long phases are split into
// a base fragment and continuation fragments ("phase-1" + "phase-1b").
type PhaseFragment struct {
	ID          string
	Title       string
	Emoji       string
	Description string
	Topics      []models.Topic
}

// AssemblePhase joins a base fragment with its continuations into one phase.
// The result keeps the base's id, title, emoji and description; topic lists
// are concatenated in order. Topics are not de-duplicated: colliding ids all
// appear and are reported by Validate.
func AssemblePhase(base PhaseFragment, continuations ...PhaseFragment) models.Phase {
	n := len(base.Topics)
	for _, c := range continuations {
		n += len(c.Topics)
	}

	topics := make([]models.Topic, 0, n)
	topics = append(topics, base.Topics...)
	for _, c := range continuations {
		topics = append(topics, c.Topics...)
	}

	return models.Phase{
		ID:          base.ID,
		Title:       base.Title,
		Emoji:       base.Emoji,
		Description: base.Description,
		Topics:      topics,
	}
}

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-roadmaps/internal/models"
)

func TestAssemblePhase(t *testing.T) {
	base := PhaseFragment{
		ID:          "phase-1",
		Title:       "Foundations",
		Emoji:       "🧱",
		Description: "Start here",
		Topics:      []models.Topic{topic("a", "A"), topic("b", "B")},
	}
	cont := PhaseFragment{
		ID:     "phase-1b",
		Title:  "ignored",
		Topics: []models.Topic{topic("c", "C")},
	}

	p := AssemblePhase(base, cont)

	assert.Equal(t, "phase-1", p.ID)
	assert.Equal(t, "Foundations", p.Title)
	assert.Equal(t, "🧱", p.Emoji)
	assert.Equal(t, "Start here", p.Description)
	require.Len(t, p.Topics, len(base.Topics)+len(cont.Topics))
	assert.Equal(t, []string{"a", "b", "c"}, topicIDs(p))
}

func TestAssemblePhaseWithoutContinuations(t *testing.T) {
	p := AssemblePhase(PhaseFragment{ID: "p", Topics: []models.Topic{topic("a", "A")}})
	assert.Equal(t, []string{"a"}, topicIDs(p))
}

func TestAssemblePhaseDoesNotAliasFragments(t *testing.T) {
	base := PhaseFragment{ID: "p", Topics: make([]models.Topic, 1, 4)}
	base.Topics[0] = topic("a", "A")

	p := AssemblePhase(base, PhaseFragment{Topics: []models.Topic{topic("b", "B")}})
	p.Topics[0].Title = "changed"

	assert.Equal(t, "A", base.Topics[0].Title)
}

func TestAssemblePhaseKeepsDuplicates(t *testing.T) {
	p := AssemblePhase(
		PhaseFragment{ID: "p", Topics: []models.Topic{topic("dup", "First")}},
		PhaseFragment{Topics: []models.Topic{topic("dup", "Second")}},
	)

	require.Len(t, p.Topics, 2)
	assert.Equal(t, "First", p.Topics[0].Title)
	assert.Equal(t, "Second", p.Topics[1].Title)
}

func topicIDs(p models.Phase) []string {
	ids := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		ids = append(ids, t.ID)
	}
	return ids
}

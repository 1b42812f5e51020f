package models

// CatalogEntry is the metadata-only projection of a roadmap used for listing
type CatalogEntry struct {
	Slug        string   `yaml:"slug" json:"slug"`   // "javascript"
	Title       string   `yaml:"title" json:"title"` // "JavaScript"
	Emoji       string   `yaml:"emoji" json:"emoji"`
	Color       string   `yaml:"color" json:"color"` // css color token, e.g. "#f7df1e"
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	ComingSoon  bool     `yaml:"coming_soon" json:"comingSoon"`
}

// HasTag reports whether the entry carries the given tag
func (e CatalogEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RoadmapDetail is a roadmap with its counts, as served by the detail endpoint
// and the static JSON export. Entries without phases report an empty list and
// ContentPending.
type RoadmapDetail struct {
	Roadmap
	PhaseCount     int  `json:"phaseCount"`
	TopicCount     int  `json:"topicCount"`
	ContentPending bool `json:"contentPending"`
}

// Roadmap is a catalog entry together with its assembled phases
type Roadmap struct {
	CatalogEntry
	Phases []Phase `json:"phases"`
}

// TopicCount returns the number of topics across all phases
func (r Roadmap) TopicCount() int {
	return CountTopics(r.Phases)
}

// CountTopics sums topic counts over a phase list
func CountTopics(phases []Phase) int {
	total := 0
	for _, p := range phases {
		total += len(p.Topics)
	}
	return total
}

package registry

import (
	"fmt"

	"github.com/terra-clan/learning-roadmaps/internal/models"
)

// Severity grades a validation issue
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a content problem found by Validate
type Issue struct {
	Severity Severity `json:"severity"`
	Slug     string   `json:"slug,omitempty"`
	PhaseID  string   `json:"phaseId,omitempty"`
	TopicID  string   `json:"topicId,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.Slug
	if i.PhaseID != "" {
		loc += "/" + i.PhaseID
	}
	if i.TopicID != "" {
		loc += "/" + i.TopicID
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, loc, i.Message)
}

// HasErrors reports whether any issue is an error
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate inspects the registry and reports problems. It never alters
// content: duplicate ids stay in place so authors can decide how to fix them.
func (r *Registry) Validate() []Issue {
	var issues []Issue

	seenSlugs := make(map[string]bool, len(r.catalog))
	for _, e := range r.catalog {
		if seenSlugs[e.Slug] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Slug:     e.Slug,
				Message:  "duplicate catalog slug",
			})
			continue
		}
		seenSlugs[e.Slug] = true

		if _, ok := r.phases[e.Slug]; !ok && !e.ComingSoon {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Slug:     e.Slug,
				Message:  "catalog entry has no phases registered",
			})
		}
	}

	for _, slug := range r.PhaseSlugs() {
		phases := r.phases[slug]

		if !seenSlugs[slug] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Slug:     slug,
				Message:  "phases registered without a catalog entry",
			})
		}

		if len(phases) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Slug:     slug,
				Message:  "roadmap has an empty phase list",
			})
		}

		phaseIDs := make(map[string]bool, len(phases))
		for _, p := range phases {
			if phaseIDs[p.ID] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Slug:     slug,
					PhaseID:  p.ID,
					Message:  "duplicate phase id",
				})
			}
			phaseIDs[p.ID] = true
			issues = append(issues, validatePhase(slug, p)...)
		}
	}

	return issues
}

func validatePhase(slug string, p models.Phase) []Issue {
	var issues []Issue

	if len(p.Topics) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Slug:     slug,
			PhaseID:  p.ID,
			Message:  "phase has no topics",
		})
	}

	topicIDs := make(map[string]int, len(p.Topics))
	for _, t := range p.Topics {
		topicIDs[t.ID]++
		if topicIDs[t.ID] == 2 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Slug:     slug,
				PhaseID:  p.ID,
				TopicID:  t.ID,
				Message:  "duplicate topic id (check continuation fragments)",
			})
		}

		for n, q := range t.InterviewQuestions {
			if !q.Type.Valid() {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Slug:     slug,
					PhaseID:  p.ID,
					TopicID:  t.ID,
					Message:  fmt.Sprintf("interview question %d has unknown type %q", n+1, q.Type),
				})
			}
		}
	}

	return issues
}

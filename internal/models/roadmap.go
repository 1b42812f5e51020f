package models

import "slices"

// QuestionType classifies an interview question
type QuestionType string

const (
	QuestionConceptual QuestionType = "conceptual"
	QuestionCoding     QuestionType = "coding"
	QuestionScenario   QuestionType = "scenario"
	QuestionTricky     QuestionType = "tricky"
)

// Valid returns true if the type is one of the known question kinds
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionConceptual, QuestionCoding, QuestionScenario, QuestionTricky:
		return true
	}
	return false
}

// InterviewQuestion is a single question/answer pair attached to a topic
type InterviewQuestion struct {
	Type QuestionType `yaml:"type" json:"type"`
	Q    string       `yaml:"q" json:"q"`
	A    string       `yaml:"a" json:"a"` // markdown
}

// Topic is one lesson within a phase
type Topic struct {
	ID                 string              `yaml:"id" json:"id"` // unique within its phase
	Title              string              `yaml:"title" json:"title"`
	Explanation        string              `yaml:"explanation" json:"explanation"` // markdown
	CodeExample        string              `yaml:"code_example" json:"codeExample"`
	Exercise           string              `yaml:"exercise" json:"exercise"` // markdown
	CommonMistakes     []string            `yaml:"common_mistakes" json:"commonMistakes"`
	InterviewQuestions []InterviewQuestion `yaml:"interview_questions" json:"interviewQuestions"`
}

// Phase is an ordered stage of a roadmap
type Phase struct {
	ID          string  `yaml:"id" json:"id"` // unique within its roadmap
	Title       string  `yaml:"title" json:"title"`
	Emoji       string  `yaml:"emoji" json:"emoji"`
	Description string  `yaml:"description" json:"description"`
	Topics      []Topic `yaml:"topics" json:"topics"`
}

// TopicCount returns the number of topics in the phase
func (p Phase) TopicCount() int {
	return len(p.Topics)
}

// Clone returns a copy of the topic that shares no slices with t
func (t Topic) Clone() Topic {
	t.CommonMistakes = slices.Clone(t.CommonMistakes)
	t.InterviewQuestions = slices.Clone(t.InterviewQuestions)
	return t
}

// Clone returns a copy of the phase that shares no slices with p
func (p Phase) Clone() Phase {
	if p.Topics != nil {
		topics := make([]Topic, len(p.Topics))
		for i, t := range p.Topics {
			topics[i] = t.Clone()
		}
		p.Topics = topics
	}
	return p
}

// ClonePhases deep-copies a phase list, keeping nil as nil
func ClonePhases(phases []Phase) []Phase {
	if phases == nil {
		return nil
	}
	out := make([]Phase, len(phases))
	for i, p := range phases {
		out[i] = p.Clone()
	}
	return out
}

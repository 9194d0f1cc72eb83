// Package candidate holds the canonical data model of a screening run: the
// parsed profile, interview questions, scoring result and the assembled report.
package candidate

import "strings"

// UnknownName is the placeholder name the parsing stage uses when nothing could be extracted.
const UnknownName = "Unknown"

// ResumeItem is one loaded resume. The pipeline never mutates it.
type ResumeItem struct {
	Filename string
	Text     string
}

// ExperienceEntry is one position held by the candidate.
type ExperienceEntry struct {
	Company  string `json:"company" mapstructure:"company"`
	Position string `json:"position" mapstructure:"position"`
	Duration string `json:"duration" mapstructure:"duration"`
}

// Profile is the output of the parsing stage.
type Profile struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Skills     []string          `json:"skills"`
	Education  []string          `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
	Summary    string            `json:"summary"`
}

// IsParsed reports whether the profile identifies a candidate. A profile
// without a name, or with the placeholder name, is a parse failure.
func (p Profile) IsParsed() bool {
	name := strings.TrimSpace(p.Name)
	return name != "" && !strings.EqualFold(name, UnknownName)
}

// Level is the difficulty of an interview question.
type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHard   Level = "Hard"
)

// QuestionType separates behavioral from technical questions.
type QuestionType string

const (
	TypeBehavioral QuestionType = "behavioral"
	TypeTechnical  QuestionType = "technical"
)

// Question is a single generated interview question.
type Question struct {
	Level    Level        `json:"level"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
}

// Recommendation is the hiring decision attached to a score.
type Recommendation string

const (
	Hire  Recommendation = "hire"
	Maybe Recommendation = "maybe"
	Pass  Recommendation = "pass"
)

// Scoring is the output of the scoring stage.
type Scoring struct {
	Score          float64        `json:"score"`
	Reasoning      string         `json:"reasoning"`
	Strengths      []string       `json:"strengths"`
	Concerns       []string       `json:"concerns"`
	Recommendation Recommendation `json:"recommendation"`
}

// Report is the assembled, ranked unit of a batch result.
type Report struct {
	Name           string            `json:"name"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Skills         []string          `json:"skills"`
	Education      []string          `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Summary        string            `json:"summary"`
	Questions      []string          `json:"questions"`
	Score          float64           `json:"score"`
	Reasoning      string            `json:"reasoning"`
	Strengths      []string          `json:"strengths"`
	Concerns       []string          `json:"concerns"`
	Recommendation Recommendation    `json:"recommendation"`
	Filename       string            `json:"filename"`
}

package candidate

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxSkills    = 10
	DefaultMaxQuestions = 6
)

// Assembler merges the three stage outputs into a Report.
type Assembler struct {
	MaxSkills    int
	MaxQuestions int
	Policy       RecommendationPolicy
}

// Assemble applies the default limits and the model recommendation policy.
func Assemble(p Profile, questions []Question, s Scoring, filename string) Report {
	return Assembler{}.Assemble(p, questions, s, filename)
}

// Assemble produces a Report with bounded skill and question lists, a clamped
// score and a recommendation from the configured policy. Every slice in the
// result is a fresh, non-nil copy.
func (a Assembler) Assemble(p Profile, questions []Question, s Scoring, filename string) Report {
	maxSkills := a.MaxSkills
	if maxSkills <= 0 {
		maxSkills = DefaultMaxSkills
	}
	maxQuestions := a.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	s.Score = ClampScore(s.Score)
	s.Recommendation = a.Policy.Apply(s)

	texts := make([]string, 0, maxQuestions)
	for _, q := range questions {
		if len(texts) == maxQuestions {
			break
		}
		if text := strings.TrimSpace(q.Question); text != "" {
			texts = append(texts, text)
		}
	}

	experience := make([]ExperienceEntry, len(p.Experience))
	copy(experience, p.Experience)

	return Report{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Skills:         limit(p.Skills, maxSkills),
		Education:      limit(p.Education, 0),
		Experience:     experience,
		Summary:        p.Summary,
		Questions:      texts,
		Score:          s.Score,
		Reasoning:      s.Reasoning,
		Strengths:      limit(s.Strengths, 0),
		Concerns:       limit(s.Concerns, 0),
		Recommendation: s.Recommendation,
		Filename:       filename,
	}
}

// limit copies the first n entries of in; n <= 0 copies everything.
func limit(in []string, n int) []string {
	if n <= 0 || n > len(in) {
		n = len(in)
	}
	out := make([]string, n)
	copy(out, in[:n])
	return out
}

// Render formats the profile as the compact text handed to the scoring stage.
func (p Profile) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if len(p.Education) > 0 {
		fmt.Fprintf(&b, "Education: %s\n", strings.Join(p.Education, "; "))
	}
	if len(p.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range p.Experience {
			fmt.Fprintf(&b, "- %s at %s", e.Position, e.Company)
			if e.Duration != "" {
				fmt.Fprintf(&b, " (%s)", e.Duration)
			}
			b.WriteString("\n")
		}
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", p.Summary)
	}

	return strings.TrimRight(b.String(), "\n")
}

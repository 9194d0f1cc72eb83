package candidate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	profile := Profile{
		Name:       "Jane",
		Skills:     []string{"Go"},
		Education:  []string{},
		Experience: []ExperienceEntry{},
		Summary:    "Backend engineer",
	}
	questions := []Question{{Level: LevelEasy, Question: "Q1", Type: TypeBehavioral}}
	scoring := Scoring{Score: 75, Reasoning: "r", Strengths: []string{"Go"}, Concerns: []string{}, Recommendation: Hire}

	report := Assemble(profile, questions, scoring, "a.txt")

	assert.Equal(t, "Jane", report.Name)
	assert.Equal(t, []string{"Q1"}, report.Questions)
	assert.Equal(t, 75.0, report.Score)
	assert.Equal(t, Hire, report.Recommendation)
	assert.Equal(t, "a.txt", report.Filename)
	assert.Equal(t, []string{"Go"}, report.Strengths)
	assert.NotNil(t, report.Concerns)
	assert.NotNil(t, report.Experience)
}

func TestAssembleLimits(t *testing.T) {
	skills := make([]string, 0, 15)
	for i := range 15 {
		skills = append(skills, fmt.Sprintf("skill-%d", i))
	}
	questions := make([]Question, 0, 9)
	for i := range 9 {
		questions = append(questions, Question{Question: fmt.Sprintf("question-%d", i)})
	}
	questions[0].Question = "   "

	report := Assemble(Profile{Name: "Jane", Skills: skills}, questions, Scoring{Score: 120, Recommendation: "HIRE"}, "a.txt")

	require.Len(t, report.Skills, DefaultMaxSkills)
	assert.Equal(t, "skill-0", report.Skills[0])
	require.Len(t, report.Questions, DefaultMaxQuestions)
	assert.Equal(t, "question-1", report.Questions[0])
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, Hire, report.Recommendation)
	assert.NotNil(t, report.Education)
	assert.NotNil(t, report.Strengths)
}

func TestAssembleCustomLimits(t *testing.T) {
	a := Assembler{MaxSkills: 2, MaxQuestions: 1}
	report := a.Assemble(
		Profile{Name: "Jane", Skills: []string{"Go", "Rust", "Zig"}},
		[]Question{{Question: "Q1"}, {Question: "Q2"}},
		Scoring{},
		"a.txt",
	)

	assert.Equal(t, []string{"Go", "Rust"}, report.Skills)
	assert.Equal(t, []string{"Q1"}, report.Questions)
}

func TestAssembleDoesNotAlias(t *testing.T) {
	profile := Profile{Name: "Jane", Skills: []string{"Go"}}
	report := Assemble(profile, nil, Scoring{}, "a.txt")

	report.Skills[0] = "changed"
	assert.Equal(t, "Go", profile.Skills[0])
}

func TestAssembleThresholdPolicy(t *testing.T) {
	a := Assembler{Policy: PolicyThreshold}

	report := a.Assemble(Profile{Name: "Jane"}, nil, Scoring{Score: 55, Recommendation: Hire}, "a.txt")
	assert.Equal(t, Maybe, report.Recommendation)
}

func TestRecommendationForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Recommendation
	}{
		{score: 100, want: Hire},
		{score: 70, want: Hire},
		{score: 69.9, want: Maybe},
		{score: 50, want: Maybe},
		{score: 49, want: Pass},
		{score: -5, want: Pass},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendationForScore(tt.score), "score %v", tt.score)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyModel, p)

	p, err = ParsePolicy("threshold")
	require.NoError(t, err)
	assert.Equal(t, PolicyThreshold, p)

	_, err = ParsePolicy("vote")
	assert.Error(t, err)
}

func TestProfileRender(t *testing.T) {
	p := Profile{
		Name:       "Jane",
		Skills:     []string{"Go", "SQL"},
		Experience: []ExperienceEntry{{Company: "Acme", Position: "Engineer", Duration: "2y"}},
		Summary:    "Backend engineer",
	}

	want := "Name: Jane\nSkills: Go, SQL\nExperience:\n- Engineer at Acme (2y)\nSummary: Backend engineer"
	assert.Equal(t, want, p.Render())
}

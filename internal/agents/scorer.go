package agents

import (
	"context"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/normalize"
)

// Scorer rates a parsed profile against a job description.
type Scorer struct {
	agent
}

func NewScorer(generator gateway.Generator, system string, opts Options) *Scorer {
	return &Scorer{agent: newAgent(generator, StageScoring, system, opts)}
}

// Score returns the assessment of profile, or candidate.DefaultScoring when
// nothing usable came back. filename is only used for logging.
func (s *Scorer) Score(ctx context.Context, profile candidate.Profile, jobDescription, filename string) candidate.Scoring {
	prompt := "Job Description:\n" + jobDescription + "\n\nCandidate Profile:\n" + profile.Render()

	value, ok := s.call(ctx, prompt, normalize.Object, filename)
	if !ok {
		return candidate.DefaultScoring()
	}

	return candidate.ScoringFromMap(value.(map[string]any))
}

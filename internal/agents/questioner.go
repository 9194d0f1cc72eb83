package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/normalize"
)

// Questioner generates interview questions for a job description.
type Questioner struct {
	agent
}

func NewQuestioner(generator gateway.Generator, system string, opts Options) *Questioner {
	return &Questioner{agent: newAgent(generator, StageQuestions, system, opts)}
}

// Generate returns the questions for jobDescription, or
// candidate.DefaultQuestions when the reply holds none.
func (q *Questioner) Generate(ctx context.Context, jobDescription string) []candidate.Question {
	value, ok := q.call(ctx, "Job Description:\n\n"+jobDescription, normalize.Array, "")
	if !ok {
		return candidate.DefaultQuestions()
	}

	questions := candidate.QuestionsFromList(value.([]any))
	if len(questions) == 0 {
		q.logger.Warn("model returned no usable questions, using default")
		q.fallback()
		return candidate.DefaultQuestions()
	}

	q.logger.Debug("generated questions", zap.Int("count", len(questions)))
	return questions
}

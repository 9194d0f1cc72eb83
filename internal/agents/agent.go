// Package agents implements the three model-driven stages of a screening run:
// resume parsing, interview question generation and candidate scoring.
//
// Agents never fail. A gateway error, an empty response or output that does
// not decode to the expected JSON shape is logged and replaced by the stage
// default from the candidate package.
package agents

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/logger"
	"github.com/spigell/resume-selector/internal/normalize"
	"github.com/spigell/resume-selector/internal/utils"
)

const (
	StageParsing   = "parsing"
	StageQuestions = "questions"
	StageScoring   = "scoring"

	defaultMaxLogLength = 200
)

// FallbackObserver is told every time a stage substitutes its default.
type FallbackObserver interface {
	StageFallback(stage string)
}

// Options are shared by all agents.
type Options struct {
	Model        string
	MaxLogLength int
	Logger       *zap.Logger
	Observer     FallbackObserver
}

type agent struct {
	generator gateway.Generator
	stage     string
	model     string
	system    string
	maxLogLen int
	logger    *zap.Logger
	observer  FallbackObserver
}

func newAgent(generator gateway.Generator, stage, system string, opts Options) agent {
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return agent{
		generator: generator,
		stage:     stage,
		model:     opts.Model,
		system:    system,
		maxLogLen: maxLogLen,
		logger:    logger.WithFields(opts.Logger, logger.StageFields(stage, "")...),
		observer:  opts.Observer,
	}
}

// call sends prompt and extracts a value of the given shape from the reply.
// ok is false when the stage has to fall back to its default.
func (a agent) call(ctx context.Context, prompt string, shape normalize.Shape, filename string) (value any, ok bool) {
	log := a.logger
	if filename != "" {
		log = log.With(zap.String(logger.FieldFilename, filename))
	}

	log.Debug("stage request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.Generate(ctx, a.model, prompt, a.system)
	if err != nil {
		log.Warn("model call failed, using default", zap.Error(err))
		a.fallback()
		return nil, false
	}

	log.Debug("stage response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	if raw == "" {
		log.Warn("model returned empty response, using default")
		a.fallback()
		return nil, false
	}

	value, ok = normalize.Extract(raw, shape)
	if !ok {
		log.Warn("model response is not a JSON "+shape.String()+", using default",
			zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
		)
		a.fallback()
		return nil, false
	}

	return value, true
}

func (a agent) fallback() {
	if a.observer != nil {
		a.observer.StageFallback(a.stage)
	}
}

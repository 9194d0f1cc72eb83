package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-selector/internal/agents"
	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/logger"
	"github.com/spigell/resume-selector/internal/metrics"
)

// Orchestrator drives batch runs against one gateway and model.
type Orchestrator struct {
	cfg   Config
	deps  Deps
	state atomic.Int32
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	deps.Logger = logger.WithCommonFields(deps.Logger, deps.Gateway.Provider(), cfg.Model)

	return &Orchestrator{cfg: cfg, deps: deps}
}

// State returns the state of the current or last run.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	o.deps.Logger.Debug("pipeline state changed", zap.Stringer("state", s))
}

// batch is the working data of one run.
type batch struct {
	jobDescription string
	parser         *agents.Parser
	questioner     *agents.Questioner
	scorer         *agents.Scorer

	questionsOnce sync.Once
	questions     []candidate.Question

	progressMu sync.Mutex
	completed  int
	total      int
	sink       ProgressSink
}

// Run processes items and returns the ranked reports. The only error it
// returns wraps ErrConnectivity and means no item was processed. A nil sink
// discards progress.
func (o *Orchestrator) Run(ctx context.Context, items []candidate.ResumeItem, jobDescription string, sink ProgressSink) (*Result, error) {
	log := o.deps.Logger

	if err := o.connect(ctx); err != nil {
		o.setState(StateFailed)
		log.Error("pipeline failed before processing", zap.Error(err))
		return nil, err
	}

	o.setState(StateProcessing)

	generator := &retryingGenerator{
		next:       o.deps.Gateway,
		maxRetries: o.cfg.MaxRetries,
		delay:      o.cfg.RetryDelay,
		logger:     log,
		metrics:    o.deps.Metrics,
	}
	opts := agents.Options{
		Model:        o.cfg.Model,
		MaxLogLength: o.cfg.MaxLogLength,
		Logger:       log,
	}
	if o.deps.Metrics != nil {
		opts.Observer = o.deps.Metrics
	}

	b := &batch{
		jobDescription: jobDescription,
		parser:         agents.NewParser(generator, o.deps.Prompts.Parsing, opts),
		questioner:     agents.NewQuestioner(generator, o.deps.Prompts.Questions, opts),
		scorer:         agents.NewScorer(generator, o.deps.Prompts.Scoring, opts),
		total:          len(items),
		sink:           sink,
	}

	runID := uuid.NewString()
	log.Info("processing resumes",
		zap.String("run_id", runID),
		zap.Int("total", len(items)),
		zap.Int("max_concurrent", o.cfg.MaxConcurrent),
	)

	reports := make([]*candidate.Report, len(items))

	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrent)
	for i := range items {
		g.Go(func() error {
			defer b.advance(items[i].Filename)
			if ctx.Err() != nil {
				log.Debug("run cancelled, skipping resume", zap.String(logger.FieldFilename, items[i].Filename))
				return nil
			}
			reports[i] = o.processItem(ctx, b, items[i])
			return nil
		})
	}
	// processItem never returns an error.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		log.Warn("run cancelled before all resumes were processed", zap.String("run_id", runID), zap.Error(err))
	}

	result := &Result{
		RunID:    runID,
		Model:    o.cfg.Model,
		Provider: o.deps.Gateway.Provider(),
		Reports:  make([]candidate.Report, 0, len(items)),
		Total:    len(items),
		Skipped:  make([]string, 0),
	}
	for i, report := range reports {
		if report == nil {
			result.Skipped = append(result.Skipped, items[i].Filename)
			continue
		}
		result.Reports = append(result.Reports, *report)
	}

	sort.SliceStable(result.Reports, func(i, j int) bool {
		return result.Reports[i].Score > result.Reports[j].Score
	})

	b.report(Progress{Completed: len(items), Total: len(items), Label: CompleteLabel})
	o.deps.Metrics.BatchFinished(result.Reported(), len(result.Skipped))
	o.setState(StateCompleted)

	log.Info("processing finished",
		zap.String("run_id", runID),
		zap.Int("initial", result.Total),
		zap.Int("dropped", len(result.Skipped)),
		zap.Int("left", result.Reported()),
	)

	return result, nil
}

func (o *Orchestrator) connect(ctx context.Context) error {
	o.setState(StateConnecting)

	if err := o.deps.Gateway.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	models, err := o.deps.Gateway.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%w: list models: %v", ErrGatewayUnreachable, err)
	}

	if !gateway.HasModel(models, o.cfg.Model) {
		return fmt.Errorf("%w: %q", ErrModelUnavailable, o.cfg.Model)
	}

	return nil
}

// processItem returns nil when the item yields no candidate.
func (o *Orchestrator) processItem(ctx context.Context, b *batch, item candidate.ResumeItem) (report *candidate.Report) {
	log := o.deps.Logger.With(zap.String(logger.FieldFilename, item.Filename))
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("resume processing panicked, skipping", zap.Any("panic", r))
			report = nil
		}

		outcome := metrics.OutcomeReported
		if report == nil {
			outcome = metrics.OutcomeSkipped
		}
		o.deps.Metrics.ItemProcessed(outcome, time.Since(started))
	}()

	profile := b.parser.Parse(ctx, item)
	if !profile.IsParsed() {
		log.Warn("resume could not be parsed, skipping", zap.String("name", profile.Name))
		return nil
	}

	b.questionsOnce.Do(func() {
		b.questions = b.questioner.Generate(ctx, b.jobDescription)
	})

	scoring := b.scorer.Score(ctx, profile, b.jobDescription, item.Filename)
	assembled := o.cfg.Assembler.Assemble(profile, b.questions, scoring, item.Filename)

	log.Info("candidate assessed",
		zap.String("name", assembled.Name),
		zap.Float64("score", assembled.Score),
		zap.String("recommendation", string(assembled.Recommendation)),
	)

	return &assembled
}

func (b *batch) advance(label string) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()

	b.completed++
	if b.sink != nil {
		b.sink.Progress(Progress{Completed: b.completed, Total: b.total, Label: label})
	}
}

func (b *batch) report(p Progress) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()

	if b.sink != nil {
		b.sink.Progress(p)
	}
}

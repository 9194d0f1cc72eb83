// Package pipeline runs a batch of resumes through the parsing, question and
// scoring stages and ranks the resulting candidate reports.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/agents"
	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/metrics"
)

// ErrConnectivity is the only error a run returns. It is raised before any
// resume is processed.
var ErrConnectivity = errors.New("model gateway connectivity failure")

var (
	ErrGatewayUnreachable = fmt.Errorf("%w: gateway is unreachable", ErrConnectivity)
	ErrModelUnavailable   = fmt.Errorf("%w: model is not available", ErrConnectivity)
)

// State is the lifecycle position of an Orchestrator.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// CompleteLabel is the label of the final progress event of a run.
const CompleteLabel = "Complete"

// Progress is reported after every resume and once more when the run completes.
type Progress struct {
	Completed int
	Total     int
	Label     string
}

// ProgressSink receives progress events. Calls are serialized.
type ProgressSink interface {
	Progress(Progress)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Progress)

func (f SinkFunc) Progress(p Progress) {
	f(p)
}

// Config contains the run settings.
type Config struct {
	Model         string
	MaxConcurrent int
	MaxRetries    int
	RetryDelay    time.Duration
	MaxLogLength  int
	Assembler     candidate.Assembler
}

// Deps aggregates the collaborators of a run.
type Deps struct {
	Gateway gateway.Gateway
	Prompts agents.Prompts
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// Result is the ranked outcome of a completed run.
type Result struct {
	RunID    string
	Model    string
	Provider string
	// Reports are sorted by descending score; equal scores keep input order.
	Reports []candidate.Report
	Total   int
	// Skipped lists, in input order, the files that did not yield a candidate.
	Skipped []string
}

func (r *Result) Reported() int {
	return len(r.Reports)
}

package pipeline

import (
	"context"

	"github.com/spigell/resume-selector/internal/candidate"
)

// Outcome is the terminal event of a Job.
type Outcome struct {
	Result *Result
	Err    error
}

// Job is a run executing in its own goroutine.
type Job struct {
	progress chan Progress
	done     chan Outcome
}

// Start runs the batch in the background. Progress events arrive on
// Job.Progress, which is closed before the single Outcome is sent on Job.Done.
func (o *Orchestrator) Start(ctx context.Context, items []candidate.ResumeItem, jobDescription string) *Job {
	job := &Job{
		// one event per item plus the final one, so the run never blocks on a slow reader
		progress: make(chan Progress, len(items)+1),
		done:     make(chan Outcome, 1),
	}

	go func() {
		result, err := o.Run(ctx, items, jobDescription, SinkFunc(func(p Progress) {
			job.progress <- p
		}))
		close(job.progress)
		job.done <- Outcome{Result: result, Err: err}
		close(job.done)
	}()

	return job
}

func (j *Job) Progress() <-chan Progress {
	return j.progress
}

func (j *Job) Done() <-chan Outcome {
	return j.done
}

// Wait drains the progress channel and returns the outcome.
func (j *Job) Wait() (*Result, error) {
	for range j.progress {
	}
	outcome := <-j.done
	return outcome.Result, outcome.Err
}

package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/metrics"
	"github.com/spigell/resume-selector/internal/utils"
)

// retryingGenerator repeats failed gateway calls up to maxRetries times,
// waiting attempt*delay before each retry. Permanent failures are returned at once.
type retryingGenerator struct {
	next       gateway.Generator
	maxRetries int
	delay      time.Duration
	logger     *zap.Logger
	metrics    *metrics.Collector
}

func (r *retryingGenerator) Generate(ctx context.Context, model, prompt, system string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.metrics.GatewayRetry()
			r.logger.Debug("retrying model call",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", r.maxRetries),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, time.Duration(attempt)*r.delay); err != nil {
				return "", err
			}
		}

		text, err := r.next.Generate(ctx, model, prompt, system)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, gateway.ErrPermanent) || ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

package service

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// retrier re-runs a whole transaction when storage reports a serialization
// failure or deadlock. Each attempt starts from fresh reads.
type retrier struct {
	tx          Transactor
	maxAttempts int
	metrics     *metrics.Metrics
	log         *logger.Logger
}

func (r retrier) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = r.tx.InTransaction(ctx, fn)
		if err == nil || !errors.IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), errors.ErrCodeInternal, op+" cancelled")
		}
		if attempt < r.maxAttempts {
			r.metrics.DeductionRetries.Inc()
			r.log.Warn().
				Err(err).
				Str("operation", op).
				Int("attempt", attempt).
				Msg("Transaction conflict, retrying")
		}
	}
	return errors.Wrap(err, errors.ErrCodeConflict,
		fmt.Sprintf("%s did not complete after %d attempts, try again", op, r.maxAttempts))
}

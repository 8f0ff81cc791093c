// internal/session/poll.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/metrics"
)

// PollConfig bounds a poll loop. The defaults give the standard five
// minute window: 60 attempts at 5s spacing.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    5 * time.Second,
		MaxAttempts: 60,
	}
}

// ErrPollExhausted is wrapped into the error returned when every
// attempt completed without the check reporting done.
type ErrPollExhausted struct {
	Operation string
	Attempts  int
}

func (e *ErrPollExhausted) Error() string {
	return fmt.Sprintf("%s did not complete after %d attempts", e.Operation, e.Attempts)
}

// CheckFunc inspects the remote job once. Returning done=true ends the
// loop. Returning an error aborts immediately; "not yet ready" must be
// reported as (false, nil), not as an error.
type CheckFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poll runs check at a fixed interval until it reports done, errors,
// the attempt budget runs out, or ctx is cancelled. The first check
// runs after one interval; the triggering request already counts as the
// immediate look.
func Poll(ctx context.Context, operation string, cfg PollConfig, check CheckFunc) error {
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Interval):
		}

		metrics.PollAttempts.WithLabelValues(operation).Inc()

		done, err := check(ctx, attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	return &ErrPollExhausted{Operation: operation, Attempts: cfg.MaxAttempts}
}

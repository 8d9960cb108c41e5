package llm

import (
	"context"
	"errors"
	"time"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

// RetryPolicy bounds the two retryable failure modes of a model call:
// transient transport errors get a doubling backoff, schema violations get a
// fresh re-prompt. Both budgets are hard limits; exhausting either surfaces
// the last error to the caller.
type RetryPolicy struct {
	TransientAttempts int
	RepromptAttempts  int
	Backoff           time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	TransientAttempts: 3,
	RepromptAttempts:  2,
	Backoff:           200 * time.Millisecond,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.TransientAttempts <= 0 {
		p.TransientAttempts = DefaultRetryPolicy.TransientAttempts
	}
	if p.RepromptAttempts < 0 {
		p.RepromptAttempts = DefaultRetryPolicy.RepromptAttempts
	}
	if p.Backoff <= 0 {
		p.Backoff = DefaultRetryPolicy.Backoff
	}
	return p
}

// Do runs fn until it succeeds or a budget is exhausted. Errors that match
// neither ErrModelInvoke nor ErrSchemaViolation are returned immediately.
func Do[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	var zero T
	transientLeft := policy.TransientAttempts
	repromptLeft := policy.RepromptAttempts + 1
	backoff := policy.Backoff

	for {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}

		switch {
		case errors.Is(err, contractx.ErrSchemaViolation), errors.Is(err, contractx.ErrUnknownCategory):
			repromptLeft--
			if repromptLeft <= 0 {
				return zero, err
			}
		case errors.Is(err, contractx.ErrModelInvoke):
			transientLeft--
			if transientLeft <= 0 {
				return zero, err
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		default:
			return zero, err
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
}

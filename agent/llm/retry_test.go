package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		TransientAttempts: 3,
		RepromptAttempts:  2,
		Backoff:           time.Millisecond,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	out, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != "ok" || calls != 1 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	out, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("%w: timeout", contractx.ErrModelInvoke)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != 42 || calls != 3 {
		t.Fatalf("out=%d calls=%d", out, calls)
	}
}

func TestDoExhaustsTransientBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("%w: timeout", contractx.ErrModelInvoke)
	})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoRepromptsOnSchemaViolation(t *testing.T) {
	t.Parallel()

	calls := 0
	out, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("%w: not json", contractx.ErrSchemaViolation)
		}
		return "valid", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != "valid" || calls != 2 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}

func TestDoExhaustsRepromptBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: not json", contractx.ErrSchemaViolation)
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	// initial attempt plus RepromptAttempts re-prompts
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "", sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", fmt.Errorf("%w: timeout", contractx.ErrModelInvoke)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

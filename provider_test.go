package mbtichat

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testPolicy returns a 3-attempt policy that records sleeps instead of
// actually waiting.
func testPolicy(slept *[]time.Duration) retryPolicy {
	return retryPolicy{
		MaxAttempts: 3,
		Sleep: func(d time.Duration) {
			*slept = append(*slept, d)
		},
	}
}

func TestRetryRateLimitedThenSuccess(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	calls := 0
	text, err := policy.run(context.Background(), "fake", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("rate limit exceeded")
		}
		return "finally", nil
	}, func(err error) ErrorKind { return classifyGenericError(err, nil) })

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "finally" {
		t.Fatalf("text = %q", text)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	// Waits after attempts 0 and 1: (2^attempt)+1 seconds.
	want := []time.Duration{2 * time.Second, 3 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("slept %v, want %v", slept, want)
		}
	}
}

func TestRetryRateLimitedExhausted(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	calls := 0
	_, err := policy.run(context.Background(), "fake", func() (string, error) {
		calls++
		return "", errors.New("429 too many requests")
	}, func(err error) ErrorKind { return classifyGenericError(err, nil) })

	if calls != 3 {
		t.Fatalf("calls = %d, want exactly 3", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2 (no wait after the final attempt)", len(slept))
	}
	pe, ok := AsProviderError(err)
	if !ok || pe.Kind != ErrRateLimited {
		t.Fatalf("err = %v, want rate_limited ProviderError", err)
	}
	if pe.Provider != "fake" {
		t.Fatalf("provider = %q", pe.Provider)
	}
}

func TestRetryTransientSingleRetry(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	calls := 0
	text, err := policy.run(context.Background(), "fake", func() (string, error) {
		calls++
		if calls == 1 {
			return "", context.DeadlineExceeded
		}
		return "recovered", nil
	}, func(err error) ErrorKind { return classifyGenericError(err, nil) })

	if err != nil || text != "recovered" {
		t.Fatalf("text=%q err=%v", text, err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if len(slept) != 0 {
		t.Fatalf("transient retry must not wait, slept %v", slept)
	}
}

func TestRetryTransientTwiceGivesUp(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	calls := 0
	_, err := policy.run(context.Background(), "fake", func() (string, error) {
		calls++
		return "", context.DeadlineExceeded
	}, func(err error) ErrorKind { return classifyGenericError(err, nil) })

	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (one retry only)", calls)
	}
	pe, ok := AsProviderError(err)
	if !ok || pe.Kind != ErrTransient {
		t.Fatalf("err = %v, want transient ProviderError", err)
	}
}

func TestRetryAuthMissingNoRetry(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	calls := 0
	_, err := policy.run(context.Background(), "fake", func() (string, error) {
		calls++
		return "", errors.New("invalid api key")
	}, func(err error) ErrorKind { return ErrAuthMissing })

	if calls != 1 {
		t.Fatalf("calls = %d, auth failures must not be retried", calls)
	}
	pe, ok := AsProviderError(err)
	if !ok || pe.Kind != ErrAuthMissing {
		t.Fatalf("err = %v, want auth_missing ProviderError", err)
	}
}

func TestRetryCanceledContext(t *testing.T) {
	var slept []time.Duration
	policy := testPolicy(&slept)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := policy.run(ctx, "fake", func() (string, error) {
		calls++
		return "never", nil
	}, func(err error) ErrorKind { return ErrUnknown })

	if calls != 0 {
		t.Fatalf("calls = %d, canceled context must short-circuit", calls)
	}
	pe, ok := AsProviderError(err)
	if !ok || pe.Kind != ErrTransient {
		t.Fatalf("err = %v, want transient ProviderError", err)
	}
}

func TestBackoffSchedule(t *testing.T) {
	policy := defaultRetryPolicy()
	if policy.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want 3", policy.MaxAttempts)
	}
	if d := policy.backoff(0); d != 2*time.Second {
		t.Errorf("backoff(0) = %v, want 2s", d)
	}
	if d := policy.backoff(1); d != 3*time.Second {
		t.Errorf("backoff(1) = %v, want 3s", d)
	}
	if d := policy.backoff(2); d != 5*time.Second {
		t.Errorf("backoff(2) = %v, want 5s", d)
	}
	if total := policy.maxElapsed(); total != 5*time.Second {
		t.Errorf("maxElapsed = %v, want 5s", total)
	}
}

func TestAvailabilityCache(t *testing.T) {
	var a availability
	if a.ok() {
		t.Fatal("zero-value availability should be dead")
	}
	a.markAlive()
	if !a.ok() {
		t.Fatal("markAlive did not take")
	}
	a.markDead()
	if a.ok() {
		t.Fatal("markDead did not take")
	}
}

package mbtichat

import (
	"context"
	"time"

	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Provider adapters — common contract
// ──────────────────────────────────────────────

// Canonical provider identifiers used in allocations and diagnostics.
const (
	ProviderRetrieval  = "retrieval"
	ProviderLlama      = "llama"
	ProviderOpenAI     = "openai"
	ProviderSimulation = "simulation"
)

// GenerateRequest carries one generation call. Persona is always set by the
// orchestrator; adapters that do retrieval filter on it.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	ModelHint    string
	Persona      PersonalityType
}

// Provider wraps one external text-generation capability. Generate returns
// either text or a *ProviderError; no other error type escapes an adapter.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// HealthCheck probes the backend and refreshes the availability cache.
	HealthCheck(ctx context.Context) bool
	// Available reads the cached availability without a network round trip.
	Available() bool
}

// availability is the monotonic "mark dead until re-check" cache shared by
// adapters. A credential or connectivity failure flips it off; only an
// explicit HealthCheck flips it back on.
type availability struct {
	alive atomic.Bool
}

func (a *availability) markAlive() { a.alive.Store(true) }
func (a *availability) markDead()  { a.alive.Store(false) }
func (a *availability) ok() bool   { return a.alive.Load() }

// retryPolicy implements the backoff contract: up to MaxAttempts tries,
// waiting 2^attempt+1 seconds after each rate-limited attempt (2s then 3s
// for a 3-attempt policy). Transient errors get one immediate retry.
// Sleep is injectable so tests run without wall-clock waits.
type retryPolicy struct {
	MaxAttempts int
	Sleep       func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{MaxAttempts: 3, Sleep: time.Sleep}
}

// backoff returns the wait after a rate-limited attempt (0-based).
func (p retryPolicy) backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)+1) * time.Second
}

// maxElapsed bounds the total time a full retry cycle can spend waiting.
// The orchestrator uses it to derive per-call deadlines.
func (p retryPolicy) maxElapsed() time.Duration {
	var total time.Duration
	for i := 0; i < p.MaxAttempts-1; i++ {
		total += p.backoff(i)
	}
	return total
}

// run executes fn under the retry policy. classify maps a raw error to an
// ErrorKind; the returned error, if any, is always a *ProviderError.
func (p retryPolicy) run(ctx context.Context, provider string, fn func() (string, error), classify func(error) ErrorKind) (string, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	transientRetried := false
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", newProviderError(provider, ErrTransient, err)
		}

		text, err := fn()
		if err == nil {
			return text, nil
		}

		kind := classify(err)
		switch kind {
		case ErrRateLimited:
			if attempt < attempts-1 {
				p.Sleep(p.backoff(attempt))
				continue
			}
			return "", newProviderError(provider, ErrRateLimited, err)
		case ErrTransient:
			if !transientRetried {
				transientRetried = true
				attempt-- // transient retry does not consume a rate-limit attempt
				continue
			}
			return "", newProviderError(provider, ErrTransient, err)
		default:
			return "", newProviderError(provider, kind, err)
		}
	}

	// Unreachable with attempts >= 1; kept for totality.
	return "", newProviderError(provider, ErrUnknown, ctx.Err())
}

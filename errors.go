package mbtichat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ──────────────────────────────────────────────
// Provider error taxonomy
// ──────────────────────────────────────────────

// ErrorKind classifies a provider failure and determines retry behavior.
type ErrorKind string

const (
	ErrAuthMissing ErrorKind = "auth_missing" // no credential configured, never retried
	ErrRateLimited ErrorKind = "rate_limited" // retried with backoff up to the attempt cap
	ErrTransient   ErrorKind = "transient"    // network/timeout, single retry
	ErrUnavailable ErrorKind = "unavailable"  // dependency not initialized, never retried
	ErrUnknown     ErrorKind = "unknown"      // unclassified, logged and given up immediately
)

// ProviderError is the normalized failure every adapter returns. Raw errors
// never cross the adapter boundary.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// newProviderError wraps err with a provider name and kind.
func newProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// AsProviderError extracts a *ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// rateLimitSignatures are the backend-independent markers; each adapter may
// add its own provider-specific signatures on top.
var rateLimitSignatures = []string{"rate limit", "429"}

// isRateLimitMessage reports whether msg carries a rate-limit indicator.
// Matching is case-insensitive substring search, per the upstream APIs'
// unstructured error text.
func isRateLimitMessage(msg string, extra []string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range rateLimitSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	for _, sig := range extra {
		if strings.Contains(lower, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}

// isCallerCancellation reports whether the failure came from the caller's
// context rather than the backend. Such failures say nothing about backend
// health and must not poison the availability cache.
func isCallerCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// classifyHTTPStatus maps an HTTP status code to an error kind.
// Zero (no HTTP response) classifies as transient.
func classifyHTTPStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return ErrRateLimited
	case status == 401 || status == 403:
		return ErrAuthMissing
	case status >= 500:
		return ErrTransient
	case status == 0:
		return ErrTransient
	default:
		return ErrUnknown
	}
}

// classifyGenericError handles errors with no structured status: context
// deadline and network failures are transient, rate-limit text is rate
// limited, everything else is unknown.
func classifyGenericError(err error, extraSignatures []string) ErrorKind {
	if err == nil {
		return ErrUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrTransient
	}
	if isRateLimitMessage(err.Error(), extraSignatures) {
		return ErrRateLimited
	}
	return ErrUnknown
}

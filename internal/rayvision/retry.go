package rayvision

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy bounds the optional retry wrapper. Only transport failures and
// the listed envelope codes are retried. Calls to NoRetryPaths are sent
// once.
type RetryPolicy struct {
	Attempts     int
	MinDelay     time.Duration
	MaxDelay     time.Duration
	RetryCodes   []int
	NoRetryPaths []string
}

// DefaultRetryPolicy allows five attempts with a random 1-2s pause between
// them. Task creation and submission are sent once.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     5,
		MinDelay:     time.Second,
		MaxDelay:     2 * time.Second,
		NoRetryPaths: []string{PathCreateTask, PathSubmitTask},
	}
}

// Retryable reports whether err is worth another attempt under p. A reply
// that arrived but could not be decoded is not retried.
func (p RetryPolicy) Retryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Kind != KindCancelled && transportErr.Kind != KindDecode
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return slices.Contains(p.RetryCodes, apiErr.Code)
	}
	return false
}

// RetriesPath reports whether calls to endpointPath may be repeated.
func (p RetryPolicy) RetriesPath(endpointPath string) bool {
	return !slices.Contains(p.NoRetryPaths, endpointPath)
}

func (p RetryPolicy) delay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return max(p.MinDelay, 0)
	}
	return p.MinDelay + rand.N(p.MaxDelay-p.MinDelay)
}

// Retrier wraps a Poster with a bounded retry loop. Each attempt is a full,
// freshly signed call.
type Retrier struct {
	next   Poster
	policy RetryPolicy
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ Poster = (*Retrier)(nil)

// NewRetrier wraps next. Attempts below one are treated as one.
func NewRetrier(next Poster, policy RetryPolicy, logger zerolog.Logger) *Retrier {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &Retrier{next: next, policy: policy, logger: logger, sleep: sleepContext}
}

// Post forwards to the wrapped Poster, retrying retryable failures until the
// policy's attempts run out or ctx is done. The last error is returned.
func (r *Retrier) Post(ctx context.Context, endpointPath string, payload map[string]any, opts ...PostOption) (json.RawMessage, error) {
	for attempt := 1; ; attempt++ {
		data, err := r.next.Post(ctx, endpointPath, payload, opts...)
		if err == nil || attempt >= r.policy.Attempts || !r.policy.Retryable(err) || !r.policy.RetriesPath(endpointPath) {
			return data, err
		}
		delay := r.policy.delay()
		r.logger.Warn().
			Err(err).
			Str("endpoint", EndpointName(endpointPath)).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying request")
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return nil, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

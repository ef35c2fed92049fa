package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable marks a call that still failed after every retry.
var ErrUnavailable = errors.New("store unavailable")

// RetryPolicy bounds the retries of one store call.
type RetryPolicy struct {
	Attempts     int           // total tries including the first
	InitialDelay time.Duration // wait before the second try
	Multiplier   float64       // growth factor between waits
}

// DefaultRetryPolicy is 4 tries waiting 0.8s, 1.28s, 2.05s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 4, InitialDelay: 800 * time.Millisecond, Multiplier: 1.6}
}

// Retrier runs store calls through a circuit breaker with exponential backoff.
// Errors for which Permanent reports true are returned without retrying.
type Retrier struct {
	policy    RetryPolicy
	breaker   *CircuitBreaker
	Permanent func(error) bool
}

func NewRetrier(policy RetryPolicy, breaker *CircuitBreaker) *Retrier {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 1
	}
	return &Retrier{policy: policy, breaker: breaker}
}

// Breaker exposes the breaker for health reporting.
func (r *Retrier) Breaker() *CircuitBreaker { return r.breaker }

// Do runs fn until it succeeds, a permanent error occurs, the breaker opens,
// ctx is done or the attempts are used up. The last error is returned; when
// the attempts ran out it also matches ErrUnavailable.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialDelay
	b.Multiplier = r.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = r.policy.InitialDelay * 10

	call := fn
	if r.breaker != nil {
		call = func() error { return r.breaker.Execute(fn) }
	}

	stopped := false
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := call()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) || (r.Permanent != nil && r.Permanent(err)) {
			stopped = true
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.policy.Attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).Str("op", op).Dur("retry_in", wait).Msg("store call failed, retrying")
		}),
	)
	if err != nil && !stopped && ctx.Err() == nil {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return err
}

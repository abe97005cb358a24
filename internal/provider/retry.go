package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ragvault/ragvault/internal/apperr"
)

// retryPolicy returns the exponential backoff used for provider calls:
// up to 3 attempts, starting around 2s and capped around 10s, per §4.1.
func retryPolicy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 10 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.3
	return b
}

// withRetry runs op, retrying on ProviderTransient errors per the policy
// above. It respects ctx's remaining deadline: backoff.Retry stops
// attempting once ctx is done, and any failure surfaced after retries are
// exhausted (or no time remains) is reported as ProviderUnavailable.
func withRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	result, err := backoff.Retry(ctx, func() (T, error) {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		appErr, ok := apperr.As(err)
		if !ok || appErr.Kind != apperr.KindProviderTransient {
			return val, backoff.Permanent(err)
		}
		return val, err
	},
		backoff.WithBackOff(retryPolicy()),
		backoff.WithMaxTries(3),
	)

	if err != nil {
		var zero T
		if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.KindProviderTransient {
			return zero, err
		}
		return zero, apperr.ProviderUnavailable(err, "provider call failed after retries")
	}

	return result, nil
}

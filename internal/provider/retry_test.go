package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragvault/ragvault/internal/apperr"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := withRetry(context.Background(), func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", apperr.ProviderTransient(errors.New("boom"), "transient failure")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnPermanentFailure(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), func(context.Context) (string, error) {
		attempts++
		return "", apperr.ProviderPermanent(errors.New("bad request"), "permanent failure")
	})

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindProviderPermanent, appErr.Kind)
	require.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsIntoProviderUnavailable(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), func(context.Context) (string, error) {
		attempts++
		return "", apperr.ProviderTransient(errors.New("still down"), "transient failure")
	})

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindProviderUnavailable, appErr.Kind)
	require.Equal(t, 3, attempts)
}

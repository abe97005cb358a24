package provider

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragvault/ragvault/internal/apperr"
)

// classify maps a raw error from the go-openai client into the
// ProviderTransient / ProviderPermanent taxonomy of §4.1: timeouts, 429s,
// and 5xx are retry candidates; other 4xx and schema mismatches are not.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.ProviderTransient(err, "provider call timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.ProviderTransient(err, "network error calling provider")
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return apperr.ProviderTransient(err, "provider rate limited the request")
		case apiErr.HTTPStatusCode >= 500:
			return apperr.ProviderTransient(err, "provider returned a server error")
		case apiErr.HTTPStatusCode >= 400:
			return apperr.ProviderPermanent(err, "provider rejected the request")
		}
	}

	return apperr.ProviderPermanent(err, "provider call failed")
}

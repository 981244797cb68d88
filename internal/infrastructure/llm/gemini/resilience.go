package gemini

import (
	"context"
	"errors"
	"net/http"
)

// recordGeminiFailure decides what counts against the circuit breaker.
// Cancellations and our own malformed requests say nothing about upstream
// health; server-side statuses, quota pressure and network errors do.
func recordGeminiFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return true
		case statusErr.StatusCode == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}

	return true
}

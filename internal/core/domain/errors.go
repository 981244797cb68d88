package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request rejected at the boundary, before the
	// pipeline runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream marks a failure of the external completion service itself
	// (network, auth, quota). Recoverable via the fallback model variant.
	ErrUpstream = errors.New("upstream model unavailable")

	// ErrNoStructuredData means the model responded but its text contains no
	// JSON object span at all.
	ErrNoStructuredData = errors.New("no structured data in model response")

	// ErrMalformedJSON means a JSON object span was found but did not parse.
	ErrMalformedJSON = errors.New("malformed json in model response")

	// ErrUnexpectedShape means the response parsed as valid JSON but the top
	// level is not an object.
	ErrUnexpectedShape = errors.New("unexpected model response shape")

	ErrSignNotFound = errors.New("sign not found")
)

// WrapError preserves typed semantic errors with the originating stage.
func WrapError(kind error, stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", stage, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// FailureKind returns the stable machine-readable kind for an error, used in
// API error payloads and metrics labels.
func FailureKind(err error) string {
	switch {
	case IsKind(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case IsKind(err, ErrUpstream):
		return "UPSTREAM_ERROR"
	case IsKind(err, ErrNoStructuredData):
		return "NO_STRUCTURED_DATA"
	case IsKind(err, ErrMalformedJSON):
		return "MALFORMED_JSON"
	case IsKind(err, ErrUnexpectedShape):
		return "UNEXPECTED_SHAPE"
	case IsKind(err, ErrSignNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

package httpadapter

import (
	"net/http"

	"github.com/drivesight/drivesight/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSignNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUpstream):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrNoStructuredData),
		domain.IsKind(err, domain.ErrMalformedJSON),
		domain.IsKind(err, domain.ErrUnexpectedShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

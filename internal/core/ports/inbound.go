package ports

import (
	"context"

	"github.com/drivesight/drivesight/internal/core/domain"
)

// SignIdentifier runs the full identification pipeline for one request.
type SignIdentifier interface {
	Identify(ctx context.Context, req domain.IdentificationRequest) (domain.SignIdentification, error)
}

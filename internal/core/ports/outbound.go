package ports

import (
	"context"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
)

// VisionModel invokes one multimodal completion variant with an encoded image
// and an instruction, returning the raw text response. Implementations fail
// with domain.ErrUpstream when the external call itself errors and perform no
// retries of their own.
type VisionModel interface {
	Complete(ctx context.Context, image domain.EncodedImage, prompt string) (string, error)
	Variant() string
}

// SignRepository persists and reads catalog signs.
type SignRepository interface {
	Create(ctx context.Context, sign *domain.Sign) error
	GetByID(ctx context.Context, id string) (*domain.Sign, error)
	List(ctx context.Context) ([]domain.Sign, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Sign, error)
}

// AnalyticsStore records identification events and aggregates them.
type AnalyticsStore interface {
	RecordIdentification(ctx context.Context, event domain.IdentificationEvent) error
	Stats(ctx context.Context) (domain.IdentificationStats, error)
}

// EventPublisher emits identification events for asynchronous consumers.
type EventPublisher interface {
	PublishSignIdentified(ctx context.Context, event domain.IdentificationEvent) error
}

// ResultCache stores serialized identification results keyed by request
// fingerprint. A miss is reported via ok=false, not an error.
type ResultCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// PipelineObserver receives one observation per finished identification.
type PipelineObserver interface {
	ObserveIdentification(outcome string, usedFallback bool, duration time.Duration)
}

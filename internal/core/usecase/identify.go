package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
	"github.com/drivesight/drivesight/internal/core/ports"
)

const defaultMIMEType = "image/jpeg"

// IdentifySignUseCase runs the identification pipeline: encode the image,
// build the prompt, call the vision model, extract the JSON payload and
// normalize it into a typed result. On an upstream failure of the primary
// variant the fallback variant is attempted exactly once; parse and shape
// failures are never retried, since the second variant would be fed the same
// unparsable conversation all over again.
type IdentifySignUseCase struct {
	primary   ports.VisionModel
	fallback  ports.VisionModel
	observer  ports.PipelineObserver
	publisher ports.EventPublisher
}

func NewIdentifySignUseCase(primary, fallback ports.VisionModel, observer ports.PipelineObserver) *IdentifySignUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &IdentifySignUseCase{
		primary:  primary,
		fallback: fallback,
		observer: observer,
	}
}

// WithPublisher attaches an event publisher for successful identifications.
// Publishing is best effort; a publish failure never fails the request.
func (uc *IdentifySignUseCase) WithPublisher(publisher ports.EventPublisher) *IdentifySignUseCase {
	uc.publisher = publisher
	return uc
}

func (uc *IdentifySignUseCase) Identify(ctx context.Context, req domain.IdentificationRequest) (domain.SignIdentification, error) {
	start := time.Now()

	if len(req.Image) == 0 {
		err := domain.WrapError(domain.ErrInvalidInput, "read image", errors.New("empty image payload"))
		uc.observe(err, false, start)
		return domain.SignIdentification{}, err
	}

	mimeType := strings.TrimSpace(req.MIMEType)
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	image := EncodeImage(req.Image, mimeType)
	prompt := BuildIdentificationPrompt(req.Jurisdiction)

	raw, usedFallback, err := uc.complete(ctx, image, prompt)
	if err != nil {
		uc.observe(err, usedFallback, start)
		return domain.SignIdentification{}, err
	}

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		uc.observe(err, usedFallback, start)
		return domain.SignIdentification{}, err
	}

	sign, err := NormalizeIdentification(payload)
	if err != nil {
		uc.observe(err, usedFallback, start)
		return domain.SignIdentification{}, err
	}

	uc.observe(nil, usedFallback, start)
	uc.publish(ctx, sign, req.Jurisdiction, usedFallback, start)
	return sign, nil
}

func (uc *IdentifySignUseCase) publish(ctx context.Context, sign domain.SignIdentification, jurisdiction string, usedFallback bool, start time.Time) {
	if uc.publisher == nil {
		return
	}

	variant := uc.primary.Variant()
	if usedFallback {
		variant = uc.fallback.Variant()
	}

	event := domain.IdentificationEvent{
		Name:         sign.Name,
		Category:     sign.Category,
		Confidence:   sign.Confidence,
		Jurisdiction: jurisdiction,
		Model:        variant,
		UsedFallback: usedFallback,
		DurationMS:   time.Since(start).Milliseconds(),
		OccurredAt:   time.Now().UnixMilli(),
	}
	if err := uc.publisher.PublishSignIdentified(ctx, event); err != nil {
		slog.Warn("failed to publish identification event", "sign", sign.Name, "error", err)
	}
}

// complete calls the primary variant and, on an upstream failure only, makes
// a single attempt with the fallback variant. Context cancellation is not an
// upstream failure and aborts immediately.
func (uc *IdentifySignUseCase) complete(ctx context.Context, image domain.EncodedImage, prompt string) (string, bool, error) {
	raw, err := uc.primary.Complete(ctx, image, prompt)
	if err == nil {
		return raw, false, nil
	}
	if uc.fallback == nil || !domain.IsKind(err, domain.ErrUpstream) {
		return "", false, err
	}

	slog.Warn("primary model variant failed, attempting fallback",
		"primary", uc.primary.Variant(),
		"fallback", uc.fallback.Variant(),
		"error", err,
	)

	raw, fbErr := uc.fallback.Complete(ctx, image, prompt)
	if fbErr != nil {
		return "", true, fbErr
	}
	return raw, true, nil
}

func (uc *IdentifySignUseCase) observe(err error, usedFallback bool, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(domain.FailureKind(err))
	}
	uc.observer.ObserveIdentification(outcome, usedFallback, time.Since(start))
}

type noopObserver struct{}

func (noopObserver) ObserveIdentification(string, bool, time.Duration) {}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
)

type visionModelFake struct {
	variant string
	reply   string
	err     error

	calls      int
	lastImage  domain.EncodedImage
	lastPrompt string
}

func (f *visionModelFake) Complete(_ context.Context, image domain.EncodedImage, prompt string) (string, error) {
	f.calls++
	f.lastImage = image
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *visionModelFake) Variant() string { return f.variant }

type observerFake struct {
	outcome      string
	usedFallback bool
	observations int
}

func (f *observerFake) ObserveIdentification(outcome string, usedFallback bool, _ time.Duration) {
	f.outcome = outcome
	f.usedFallback = usedFallback
	f.observations++
}

func upstreamErr() error {
	return domain.WrapError(domain.ErrUpstream, "complete vision request", errors.New("dial tcp: connection refused"))
}

func TestIdentifyHappyPath(t *testing.T) {
	primary := &visionModelFake{
		variant: "gemini-1.5-flash",
		reply:   `Sure! {"name":"Stop Sign","category":"Regulatory","confidence":95,"explanation":"Come to a full stop."} Hope that helps!`,
	}
	observer := &observerFake{}
	uc := NewIdentifySignUseCase(primary, nil, observer)

	sign, err := uc.Identify(context.Background(), domain.IdentificationRequest{
		Image:    []byte{0x01, 0x02},
		MIMEType: "image/png",
	})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}

	if sign.Name != "Stop Sign" || sign.Category != domain.CategoryRegulatory {
		t.Fatalf("unexpected sign: %+v", sign)
	}
	if sign.Confidence != 95 || sign.Explanation != "Come to a full stop." {
		t.Fatalf("unexpected sign: %+v", sign)
	}
	if len(sign.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %+v", sign.Alternatives)
	}
	if primary.lastImage.MIMEType != "image/png" || primary.lastImage.Data == "" {
		t.Fatalf("model did not receive the encoded image: %+v", primary.lastImage)
	}
	if observer.outcome != "success" || observer.usedFallback {
		t.Fatalf("unexpected observation: %+v", observer)
	}
}

func TestIdentifyDefaultsMIMEType(t *testing.T) {
	primary := &visionModelFake{reply: `{"name":"Stop Sign"}`}
	uc := NewIdentifySignUseCase(primary, nil, nil)

	if _, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}}); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if primary.lastImage.MIMEType != "image/jpeg" {
		t.Fatalf("expected image/jpeg default, got %q", primary.lastImage.MIMEType)
	}
}

func TestIdentifyEmptyImage(t *testing.T) {
	uc := NewIdentifySignUseCase(&visionModelFake{}, nil, nil)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIdentifyFallbackOnUpstreamError(t *testing.T) {
	primary := &visionModelFake{variant: "gemini-1.5-flash", err: upstreamErr()}
	fallback := &visionModelFake{variant: "gemini-pro-vision", reply: `{"name":"Yield Sign","category":"Regulatory"}`}
	observer := &observerFake{}
	uc := NewIdentifySignUseCase(primary, fallback, observer)

	sign, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if sign.Name != "Yield Sign" {
		t.Fatalf("unexpected sign: %+v", sign)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected one call each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
	if !observer.usedFallback || observer.outcome != "success" {
		t.Fatalf("unexpected observation: %+v", observer)
	}
}

func TestIdentifyFallbackAttemptedExactlyOnce(t *testing.T) {
	primary := &visionModelFake{err: upstreamErr()}
	fallback := &visionModelFake{err: upstreamErr()}
	uc := NewIdentifySignUseCase(primary, fallback, nil)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("fallback must be a single attempt, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestIdentifyNoFallbackOnParseFailure(t *testing.T) {
	primary := &visionModelFake{reply: "I cannot identify this sign."}
	fallback := &visionModelFake{reply: `{"name":"Stop Sign"}`}
	observer := &observerFake{}
	uc := NewIdentifySignUseCase(primary, fallback, observer)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if !domain.IsKind(err, domain.ErrNoStructuredData) {
		t.Fatalf("expected ErrNoStructuredData, got %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("parse failures must not trigger the fallback variant")
	}
	if observer.outcome != "no_structured_data" {
		t.Fatalf("unexpected outcome: %q", observer.outcome)
	}
}

func TestIdentifyMalformedJSONOutcome(t *testing.T) {
	primary := &visionModelFake{reply: "{name: Stop Sign}"}
	observer := &observerFake{}
	uc := NewIdentifySignUseCase(primary, nil, observer)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if !domain.IsKind(err, domain.ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
	if observer.outcome != "malformed_json" {
		t.Fatalf("unexpected outcome: %q", observer.outcome)
	}
}

func TestIdentifyNoFallbackOnCancellation(t *testing.T) {
	primary := &visionModelFake{err: context.Canceled}
	fallback := &visionModelFake{}
	uc := NewIdentifySignUseCase(primary, fallback, nil)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("cancellation must not trigger the fallback variant")
	}
}

type publisherFake struct {
	events []domain.IdentificationEvent
	err    error
}

func (f *publisherFake) PublishSignIdentified(_ context.Context, event domain.IdentificationEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestIdentifyPublishesEventOnSuccess(t *testing.T) {
	primary := &visionModelFake{
		variant: "gemini-1.5-flash",
		reply:   `{"name":"Yield Sign","category":"Regulatory","confidence":88,"explanation":"Give way."}`,
	}
	publisher := &publisherFake{}
	uc := NewIdentifySignUseCase(primary, nil, nil).WithPublisher(publisher)

	_, err := uc.Identify(context.Background(), domain.IdentificationRequest{
		Image:        []byte{0x01},
		Jurisdiction: "CA",
	})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Name != "Yield Sign" || event.Confidence != 88 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Jurisdiction != "CA" || event.Model != "gemini-1.5-flash" || event.UsedFallback {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.OccurredAt == 0 {
		t.Fatal("event is missing its timestamp")
	}
}

func TestIdentifyPublishFailureDoesNotFailRequest(t *testing.T) {
	primary := &visionModelFake{reply: `{"name":"Stop Sign"}`}
	publisher := &publisherFake{err: errors.New("nats: connection closed")}
	uc := NewIdentifySignUseCase(primary, nil, nil).WithPublisher(publisher)

	sign, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if sign.Name != "Stop Sign" {
		t.Fatalf("unexpected sign: %+v", sign)
	}
}

func TestIdentifyNoEventOnFailure(t *testing.T) {
	primary := &visionModelFake{reply: "no json here"}
	publisher := &publisherFake{}
	uc := NewIdentifySignUseCase(primary, nil, nil).WithPublisher(publisher)

	if _, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}}); err == nil {
		t.Fatal("expected a parse failure")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("published %d events on failure, want 0", len(publisher.events))
	}
}

func TestIdentifyEventReportsFallbackVariant(t *testing.T) {
	primary := &visionModelFake{variant: "gemini-1.5-flash", err: upstreamErr()}
	fallback := &visionModelFake{variant: "gemini-pro-vision", reply: `{"name":"Stop Sign"}`}
	publisher := &publisherFake{}
	uc := NewIdentifySignUseCase(primary, fallback, nil).WithPublisher(publisher)

	if _, err := uc.Identify(context.Background(), domain.IdentificationRequest{Image: []byte{0x01}}); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	event := publisher.events[0]
	if !event.UsedFallback || event.Model != "gemini-pro-vision" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

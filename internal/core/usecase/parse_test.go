package usecase

import (
	"testing"

	"github.com/drivesight/drivesight/internal/core/domain"
)

func TestExtractJSONPayloadFromProseWrappedText(t *testing.T) {
	raw := `Sure! {"name":"Stop Sign","category":"Regulatory","confidence":95,"explanation":"Come to a full stop."} Hope that helps!`

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", payload)
	}
	if obj["name"] != "Stop Sign" {
		t.Fatalf("expected name=Stop Sign, got %v", obj["name"])
	}
}

func TestExtractJSONPayloadMarkdownFences(t *testing.T) {
	raw := "```json\n{\"name\":\"Yield Sign\",\"confidence\":80}\n```"

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	obj := payload.(map[string]any)
	if obj["name"] != "Yield Sign" {
		t.Fatalf("expected name=Yield Sign, got %v", obj["name"])
	}
}

func TestExtractJSONPayloadNestedObject(t *testing.T) {
	raw := `prefix {"name":"Stop Sign","alternatives":[{"name":"Yield Sign","confidence":20}]} suffix`

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	obj := payload.(map[string]any)
	if _, ok := obj["alternatives"]; !ok {
		t.Fatalf("nested array lost: %v", obj)
	}
}

func TestExtractJSONPayloadBracesInsideStrings(t *testing.T) {
	raw := `{"name":"Stop Sign","explanation":"shaped like {an octagon}"} trailing }`

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	obj := payload.(map[string]any)
	if obj["explanation"] != "shaped like {an octagon}" {
		t.Fatalf("string braces mangled: %v", obj["explanation"])
	}
}

func TestExtractJSONPayloadFirstOfSiblingObjects(t *testing.T) {
	raw := `{"name":"Stop Sign"} and also {"name":"Yield Sign"}`

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	obj := payload.(map[string]any)
	if obj["name"] != "Stop Sign" {
		t.Fatalf("expected first object to win, got %v", obj["name"])
	}
}

func TestExtractJSONPayloadNoBraces(t *testing.T) {
	_, err := ExtractJSONPayload("I cannot identify this sign.")
	if !domain.IsKind(err, domain.ErrNoStructuredData) {
		t.Fatalf("expected ErrNoStructuredData, got %v", err)
	}
}

func TestExtractJSONPayloadUnclosedBrace(t *testing.T) {
	_, err := ExtractJSONPayload(`the result is {"name":"Stop Sign"`)
	if !domain.IsKind(err, domain.ErrNoStructuredData) {
		t.Fatalf("expected ErrNoStructuredData, got %v", err)
	}
}

func TestExtractJSONPayloadInvalidJSONSpan(t *testing.T) {
	_, err := ExtractJSONPayload("{name: Stop Sign}")
	if !domain.IsKind(err, domain.ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
}

func TestExtractJSONPayloadTopLevelArrayParses(t *testing.T) {
	// An array top level is valid JSON; rejecting its shape is the
	// normalizer's job, not the parser's. The span scan keys off '{'.
	raw := `[{"name":"Stop Sign"}]`

	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		t.Fatalf("ExtractJSONPayload() error = %v", err)
	}
	if _, ok := payload.(map[string]any); !ok {
		t.Fatalf("span scan should capture the inner object, got %T", payload)
	}
}

package usecase

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/drivesight/drivesight/internal/core/domain"
)

func TestNormalizeIdentificationFullPayload(t *testing.T) {
	sign, err := NormalizeIdentification(map[string]any{
		"name":        "Stop Sign",
		"category":    "Regulatory",
		"mutcdCode":   "R1-1",
		"confidence":  float64(95),
		"explanation": "Come to a full stop.",
		"alternatives": []any{
			map[string]any{"name": "Yield Sign", "confidence": float64(20)},
		},
	})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}

	if sign.Name != "Stop Sign" || sign.Category != domain.CategoryRegulatory {
		t.Fatalf("unexpected sign: %+v", sign)
	}
	if sign.MUTCDCode != "R1-1" || sign.Confidence != 95 {
		t.Fatalf("unexpected code/confidence: %+v", sign)
	}
	if len(sign.Alternatives) != 1 || sign.Alternatives[0].Confidence != 20 {
		t.Fatalf("unexpected alternatives: %+v", sign.Alternatives)
	}
}

func TestNormalizeIdentificationDefaults(t *testing.T) {
	sign, err := NormalizeIdentification(map[string]any{})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}

	if sign.Name != "Unknown Sign" {
		t.Fatalf("expected default name, got %q", sign.Name)
	}
	if sign.Category != domain.CategoryRegulatory {
		t.Fatalf("expected default category, got %q", sign.Category)
	}
	if sign.Confidence != 75 {
		t.Fatalf("expected default confidence 75, got %d", sign.Confidence)
	}
	if sign.Explanation != "Sign identified via automated analysis" {
		t.Fatalf("expected placeholder explanation, got %q", sign.Explanation)
	}
	if sign.MUTCDCode != "" {
		t.Fatalf("absent code must stay empty, got %q", sign.MUTCDCode)
	}
	if sign.Alternatives == nil || len(sign.Alternatives) != 0 {
		t.Fatalf("expected empty alternatives slice, got %#v", sign.Alternatives)
	}
}

func TestNormalizeIdentificationConfidence(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"missing", nil, 75},
		{"non-numeric string", "high", 75},
		{"boolean", true, 75},
		{"negative clamps to zero", float64(-10), 0},
		{"above range clamps to hundred", float64(250), 100},
		{"fractional rounds", float64(87.6), 88},
		{"in range kept", float64(42), 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]any{}
			if tt.value != nil {
				payload["confidence"] = tt.value
			}
			sign, err := NormalizeIdentification(payload)
			if err != nil {
				t.Fatalf("NormalizeIdentification() error = %v", err)
			}
			if sign.Confidence != tt.want {
				t.Fatalf("confidence = %d, want %d", sign.Confidence, tt.want)
			}
		})
	}
}

func TestNormalizeIdentificationUnknownCategory(t *testing.T) {
	sign, err := NormalizeIdentification(map[string]any{"category": "Psychedelic"})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}
	if sign.Category != domain.CategoryRegulatory {
		t.Fatalf("unrecognized category must become Regulatory, got %q", sign.Category)
	}
}

func TestNormalizeIdentificationCategoryCaseInsensitive(t *testing.T) {
	sign, err := NormalizeIdentification(map[string]any{"category": "  warning "})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}
	if sign.Category != domain.CategoryWarning {
		t.Fatalf("expected Warning, got %q", sign.Category)
	}
}

func TestNormalizeIdentificationAlternatives(t *testing.T) {
	sign, err := NormalizeIdentification(map[string]any{
		"alternatives": []any{
			map[string]any{"name": "Yield Sign"},
			map[string]any{"confidence": float64(130)},
			"not an object",
			map[string]any{"name": "School Zone", "confidence": float64(15)},
		},
	})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}

	want := []domain.Alternative{
		{Name: "Yield Sign", Confidence: 0},
		{Name: "Unknown Sign", Confidence: 100},
		{Name: "School Zone", Confidence: 15},
	}
	if !reflect.DeepEqual(sign.Alternatives, want) {
		t.Fatalf("alternatives = %#v, want %#v", sign.Alternatives, want)
	}
}

func TestNormalizeIdentificationNonObjectShape(t *testing.T) {
	for _, payload := range []any{[]any{"a"}, "scalar", float64(1), nil} {
		if _, err := NormalizeIdentification(payload); !domain.IsKind(err, domain.ErrUnexpectedShape) {
			t.Fatalf("payload %#v: expected ErrUnexpectedShape, got %v", payload, err)
		}
	}
}

func TestNormalizeIdentificationIdempotent(t *testing.T) {
	first, err := NormalizeIdentification(map[string]any{
		"name":       "Speed Limit 25",
		"category":   "regulatory",
		"confidence": float64(88),
		"alternatives": []any{
			map[string]any{"name": "Speed Limit 35"},
		},
	})
	if err != nil {
		t.Fatalf("NormalizeIdentification() error = %v", err)
	}

	// Round-trip the normalized result through JSON and normalize again.
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second, err := NormalizeIdentification(payload)
	if err != nil {
		t.Fatalf("second NormalizeIdentification() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization drifted:\nfirst  %#v\nsecond %#v", first, second)
	}
}

package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/drivesight/drivesight/internal/core/domain"
)

const (
	unknownSignName    = "Unknown Sign"
	defaultExplanation = "Sign identified via automated analysis"

	// defaultConfidence applies to a primary identification missing a usable
	// confidence value. An alternative missing its confidence gets 0 instead:
	// an unranked alternative must not look as trustworthy as a directly
	// identified result.
	defaultConfidence            = 75
	defaultAlternativeConfidence = 0
)

const stageNormalize = "normalize result"

// NormalizeIdentification projects the untyped model payload onto the closed
// SignIdentification shape. It is total over any JSON object: missing or
// garbage fields degrade to documented defaults instead of failing. Only a
// non-object top level is an error.
func NormalizeIdentification(payload any) (domain.SignIdentification, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return domain.SignIdentification{}, domain.WrapError(
			domain.ErrUnexpectedShape,
			stageNormalize,
			fmt.Errorf("expected a json object, got %T", payload),
		)
	}

	return domain.SignIdentification{
		Name:         stringField(obj, "name", unknownSignName),
		Category:     domain.ParseCategory(rawString(obj["category"])),
		MUTCDCode:    strings.TrimSpace(rawString(obj["mutcdCode"])),
		Confidence:   confidenceValue(obj["confidence"], defaultConfidence),
		Explanation:  stringField(obj, "explanation", defaultExplanation),
		Alternatives: normalizeAlternatives(obj["alternatives"]),
	}, nil
}

func normalizeAlternatives(value any) []domain.Alternative {
	items, ok := value.([]any)
	out := make([]domain.Alternative, 0, len(items))
	if !ok {
		return out
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Alternative{
			Name:       stringField(obj, "name", unknownSignName),
			Confidence: confidenceValue(obj["confidence"], defaultAlternativeConfidence),
		})
	}
	return out
}

func stringField(obj map[string]any, key, fallback string) string {
	s := strings.TrimSpace(rawString(obj[key]))
	if s == "" {
		return fallback
	}
	return s
}

func rawString(value any) string {
	s, _ := value.(string)
	return s
}

// confidenceValue clamps numeric confidence into [0,100]; a missing or
// non-numeric value gets the supplied default.
func confidenceValue(value any, fallback int) int {
	n, ok := value.(float64)
	if !ok {
		return fallback
	}
	return clampConfidence(int(math.Round(n)))
}

func clampConfidence(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

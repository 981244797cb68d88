package usecase

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/drivesight/drivesight/internal/core/domain"
)

const stageParse = "parse response"

// ExtractJSONPayload locates the JSON object embedded in free-form model text
// and decodes it into a generic value. Models regularly wrap their JSON in
// prose or markdown fences despite being told not to; everything outside the
// object span is ignored.
func ExtractJSONPayload(raw string) (any, error) {
	span, ok := extractObjectSpan(raw)
	if !ok {
		return nil, domain.WrapError(domain.ErrNoStructuredData, stageParse, errors.New("no json object span in text"))
	}

	var payload any
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedJSON, stageParse, err)
	}
	return payload, nil
}

// extractObjectSpan returns the first complete, balanced {...} object in the
// text, tracking string literals so braces inside values are not miscounted.
// If the model emits several sibling objects, the first one is canonical.
// When braces never balance, the widest first-{ to last-} span is returned so
// the JSON decoder can report what is wrong with it.
func extractObjectSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(raw, '}')
	if end > start {
		return raw[start : end+1], true
	}
	return "", false
}

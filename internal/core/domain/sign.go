package domain

import (
	"strings"
	"time"
)

// Category is the closed set of traffic sign classes the service reports.
type Category string

const (
	CategoryWarning       Category = "Warning"
	CategoryRegulatory    Category = "Regulatory"
	CategoryGuide         Category = "Guide"
	CategoryTemporary     Category = "Temporary"
	CategorySchool        Category = "School"
	CategoryBicycle       Category = "Bicycle"
	CategoryInformational Category = "Informational"
)

// ParseCategory maps free-form model output onto the closed category set.
// Anything unrecognized falls back to Regulatory; the model must never leak
// an arbitrary category string to clients.
func ParseCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "warning":
		return CategoryWarning
	case "regulatory":
		return CategoryRegulatory
	case "guide":
		return CategoryGuide
	case "temporary":
		return CategoryTemporary
	case "school":
		return CategorySchool
	case "bicycle":
		return CategoryBicycle
	case "informational":
		return CategoryInformational
	default:
		return CategoryRegulatory
	}
}

// Alternative is a secondary identification candidate, ordered by model rank.
type Alternative struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// SignIdentification is the normalized result of one identification request.
// It is built once per request and immutable afterwards; confidence values
// are always within [0,100] and Category is always one of the seven
// enumerated values.
type SignIdentification struct {
	Name         string        `json:"name"`
	Category     Category      `json:"category"`
	MUTCDCode    string        `json:"mutcdCode,omitempty"`
	Confidence   int           `json:"confidence"`
	Explanation  string        `json:"explanation"`
	Alternatives []Alternative `json:"alternatives"`
}

// IdentificationRequest carries the caller-owned image payload into the
// pipeline. The pipeline reads the image bytes but never mutates them.
type IdentificationRequest struct {
	Image        []byte
	MIMEType     string
	Jurisdiction string
}

// EncodedImage is the transport-ready form of an image payload: base64 data
// plus the MIME type, unchanged.
type EncodedImage struct {
	Data     string
	MIMEType string
}

// IdentificationEvent is published after a successful identification for
// downstream analytics consumers.
type IdentificationEvent struct {
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Confidence   int      `json:"confidence"`
	Jurisdiction string   `json:"jurisdiction,omitempty"`
	Model        string   `json:"model"`
	UsedFallback bool     `json:"used_fallback"`
	DurationMS   int64    `json:"duration_ms"`
	OccurredAt   int64    `json:"occurred_at"`
}

// IdentificationStats aggregates recorded identification events.
type IdentificationStats struct {
	TotalIdentifications int64     `json:"totalIdentifications"`
	AverageConfidence    float64   `json:"averageConfidence"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

// Sign is a catalog entry in the reference sign database.
type Sign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	MUTCDCode   string    `json:"mutcdCode,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

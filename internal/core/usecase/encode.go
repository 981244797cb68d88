package usecase

import (
	"encoding/base64"

	"github.com/drivesight/drivesight/internal/core/domain"
)

// EncodeImage packs raw image bytes into the transport form the completion
// API expects. The payload is not inspected or validated; a malformed image
// is the upstream service's concern.
func EncodeImage(payload []byte, mimeType string) domain.EncodedImage {
	return domain.EncodedImage{
		Data:     base64.StdEncoding.EncodeToString(payload),
		MIMEType: mimeType,
	}
}

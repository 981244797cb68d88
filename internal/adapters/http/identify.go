package httpadapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
)

const maxUploadBytes = 15 << 20

func (rt *Router) identifySign(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "failed to read image payload")
		return
	}

	state := r.URL.Query().Get("state")
	mimeType := header.Header.Get("Content-Type")

	if cached, ok := rt.cachedResult(r.Context(), payload, state); ok {
		writeJSON(w, http.StatusOK, identifyEnvelope{
			Success:   true,
			Sign:      cached,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	sign, err := rt.identifier.Identify(r.Context(), domain.IdentificationRequest{
		Image:        payload,
		MIMEType:     mimeType,
		Jurisdiction: state,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.telemetry != nil {
		rt.telemetry.ObserveConfidence(sign.Confidence)
	}

	serialized, err := json.Marshal(sign)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.storeResult(r.Context(), payload, state, serialized)

	writeJSON(w, http.StatusOK, identifyEnvelope{
		Success:   true,
		Sign:      serialized,
		Timestamp: time.Now().UTC(),
	})
}

func (rt *Router) cachedResult(ctx context.Context, payload []byte, state string) (json.RawMessage, bool) {
	if rt.cache == nil {
		return nil, false
	}

	key := identifyCacheKey(payload, state)
	value, ok, err := rt.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("identify cache lookup failed", "error", err)
		return nil, false
	}
	if rt.telemetry != nil {
		rt.telemetry.RecordCacheLookup("api", ok)
	}
	if !ok {
		return nil, false
	}
	return json.RawMessage(value), true
}

func (rt *Router) storeResult(ctx context.Context, payload []byte, state string, serialized []byte) {
	if rt.cache == nil {
		return
	}
	key := identifyCacheKey(payload, state)
	if err := rt.cache.Set(ctx, key, string(serialized), rt.cacheTTL); err != nil {
		slog.Warn("identify cache store failed", "error", err)
	}
}

// identifyCacheKey fingerprints an identification request. Identical image
// bytes with the same jurisdiction hint always produce the same key.
func identifyCacheKey(payload []byte, state string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte("|"))
	h.Write([]byte(state))
	return "identify:" + hex.EncodeToString(h.Sum(nil))
}

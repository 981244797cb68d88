package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type identifyEnvelope struct {
	Success   bool            `json:"success"`
	Sign      json.RawMessage `json:"sign"`
	Timestamp time.Time       `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	writeJSON(w, status, errorEnvelope{
		Error: errorBody{
			Message: clientMessage(err, status),
			Code:    domain.FailureKind(err),
			Status:  status,
		},
	})
}

func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{
		Error: errorBody{
			Message: message,
			Code:    code,
			Status:  status,
		},
	})
}

// clientMessage keeps upstream and internal detail out of client payloads.
func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		switch {
		case domain.IsKind(err, domain.ErrUpstream):
			return "identification service is temporarily unavailable"
		case domain.IsKind(err, domain.ErrNoStructuredData),
			domain.IsKind(err, domain.ErrMalformedJSON),
			domain.IsKind(err, domain.ErrUnexpectedShape):
			return "identification service returned an unusable response"
		default:
			return "internal server error"
		}
	}
	return err.Error()
}

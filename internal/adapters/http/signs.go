package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drivesight/drivesight/internal/core/domain"
)

// Sign catalog handlers. Without a configured repository the endpoints answer
// with the same placeholder payloads the service shipped with before the
// catalog database existed, so clients keep working either way.

func (rt *Router) getAllSigns(w http.ResponseWriter, r *http.Request) {
	if rt.signs == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"signs": []domain.Sign{},
			"total": 0,
		})
		return
	}

	signs, err := rt.signs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signs": signs,
		"total": len(signs),
	})
}

func (rt *Router) getSignByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "sign id is required")
		return
	}

	if rt.signs == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"sign": map[string]string{
				"id":       id,
				"name":     "Stop Sign",
				"category": "Regulatory",
			},
		})
		return
	}

	sign, err := rt.signs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sign": sign})
}

func (rt *Router) getSignsByCategory(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("category")
	category, ok := parseKnownCategory(raw)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "unknown sign category")
		return
	}

	if rt.signs == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"category": category,
			"signs":    []domain.Sign{},
			"total":    0,
		})
		return
	}

	signs, err := rt.signs.ListByCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"signs":    signs,
		"total":    len(signs),
	})
}

func (rt *Router) createSign(w http.ResponseWriter, r *http.Request) {
	if rt.signs == nil {
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Sign created"})
		return
	}

	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		MUTCDCode   string `json:"mutcdCode"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "sign name is required")
		return
	}

	sign := &domain.Sign{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Category:    domain.ParseCategory(req.Category),
		MUTCDCode:   strings.TrimSpace(req.MUTCDCode),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := rt.signs.Create(r.Context(), sign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sign": sign})
}

// parseKnownCategory accepts only the seven enumerated categories, unlike
// domain.ParseCategory which folds unknown input into Regulatory.
func parseKnownCategory(raw string) (domain.Category, bool) {
	parsed := domain.ParseCategory(raw)
	if !strings.EqualFold(string(parsed), strings.TrimSpace(raw)) {
		return "", false
	}
	return parsed, true
}

package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"
)

// Auth and question endpoints are intentionally placeholders for now. They
// keep the public route surface stable for mobile clients while the real
// implementations land.

func (rt *Router) signup(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": "jwt_token_here",
		"user":  map[string]string{"id": "1", "email": req.Email},
	})
}

func (rt *Router) refreshToken(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"token": "new_jwt_token"})
}

func (rt *Router) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (rt *Router) getQuestionsByState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":     r.PathValue("state"),
		"questions": []any{},
		"total":     0,
	})
}

func (rt *Router) getQuestionCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state": r.PathValue("state"),
		"categories": []map[string]any{
			{"id": 1, "name": "Warning Signs"},
			{"id": 2, "name": "Regulatory Signs"},
			{"id": 3, "name": "Guide Signs"},
		},
	})
}

func (rt *Router) getQuestionsByCategory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":     r.PathValue("state"),
		"category":  r.PathValue("category"),
		"questions": []any{},
		"total":     0,
	})
}

func (rt *Router) createQuestion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Question created"})
}

func (rt *Router) submitPerformance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionsAnswered int    `json:"questionsAnswered"`
		CorrectAnswers    int    `json:"correctAnswers"`
		TestType          string `json:"testType"`
		Duration          int    `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if req.QuestionsAnswered <= 0 {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "questionsAnswered must be positive")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Performance submitted",
		"score":   float64(req.CorrectAnswers) / float64(req.QuestionsAnswered) * 100,
	})
}

// getStats serves real identification aggregates when the analytics store is
// configured, and the historical placeholder payload otherwise.
func (rt *Router) getStats(w http.ResponseWriter, r *http.Request) {
	if rt.analytics == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"totalQuestionsAnswered": 0,
			"totalCorrect":           0,
			"averageScore":           0,
			"lastUpdated":            time.Now().UTC(),
		})
		return
	}

	stats, err := rt.analytics.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) getProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"progress": []any{},
	})
}

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lumina-learn/lumina/internal/tutor"
)

// POST /tutor/ask {"question":"..."} sends a free-form question to the tutor.
// Connectivity problems degrade to a friendly fallback answer.
func AskTutorHandler(tc *tutor.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q := strings.TrimSpace(req.Question)
		if q == "" {
			http.Error(w, "question required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"answer": tc.Ask(r.Context(), q),
		})
	}
}

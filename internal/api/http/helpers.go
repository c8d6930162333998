package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lumina-learn/lumina/internal/evaluation"
	"github.com/lumina-learn/lumina/internal/tutor"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// writeAIError maps the three AI failure kinds onto distinct user-facing
// messages, and session/result lookups onto 404.
func writeAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, evaluation.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, evaluation.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"message": tutor.UserMessage(err),
		})
	}
}

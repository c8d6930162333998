package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/lumina-learn/lumina/internal/auth/middleware"
	"github.com/lumina-learn/lumina/internal/evaluation"
	"github.com/lumina-learn/lumina/internal/rbac"
)

type sessionResponse struct {
	SessionID string                       `json:"session_id"`
	Kind      string                       `json:"kind"`
	StartedAt time.Time                    `json:"started_at"`
	Deadline  time.Time                    `json:"deadline"`
	Questions []evaluation.SessionQuestion `json:"questions"`
}

func toSessionResponse(s evaluation.Session) sessionResponse {
	return sessionResponse{
		SessionID: s.ID,
		Kind:      s.Kind,
		StartedAt: s.StartedAt,
		Deadline:  s.Deadline,
		Questions: s.Sanitized(),
	}
}

// POST /evaluations generates a diagnostic test and opens a session.
// Generation failure aborts with one of the three AI error messages.
func StartEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		sess, err := svc.Start(r.Context(), sub)
		if err != nil {
			writeAIError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

// GET /evaluations/{sessionID} re-fetches the in-flight test.
func GetEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		sess, err := svc.Get(chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// POST /evaluations/{sessionID}/submit {"answers":{"q-1":"A",...}}
func SubmitEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub := auth.SubjectFromContext(r.Context())
		result, err := svc.Submit(r.Context(), chi.URLParam(r, "sessionID"), sub, req.Answers)
		if err != nil {
			writeAIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// POST /practice {"result_id":"..."} or {"weaknesses":["..."]}
func StartPracticeHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResultID   string   `json:"result_id"`
			Weaknesses []string `json:"weaknesses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub := auth.SubjectFromContext(r.Context())

		weaknesses := req.Weaknesses
		if req.ResultID != "" {
			res, err := svc.Result(r.Context(), req.ResultID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			role := rbac.RoleFromContext(r.Context())
			if res.UserID != sub && role != "teacher" && role != "admin" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			weaknesses = res.DetailedWeaknesses
		}
		if len(weaknesses) == 0 {
			http.Error(w, "result_id or weaknesses required", http.StatusBadRequest)
			return
		}

		sess, err := svc.StartPractice(r.Context(), sub, weaknesses)
		if err != nil {
			writeAIError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

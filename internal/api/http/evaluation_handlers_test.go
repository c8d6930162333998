package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/lumina-learn/lumina/internal/auth/middleware"
	"github.com/lumina-learn/lumina/internal/evaluation"
	"github.com/lumina-learn/lumina/internal/llm"
	"github.com/lumina-learn/lumina/internal/tutor"
)

const handlerQuizJSON = `{
	"questions": [
		{"question_text": "Choose the correct option.",
		 "options": {"A": "go", "B": "goes"},
		 "correct_answer": "B", "topic": "Grammar"}
	]
}`

func newTestRouter(svc *evaluation.Service, subject string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithSubject(req.Context(), subject)))
		})
	})
	r.Post("/evaluations", StartEvaluationHandler(svc))
	r.Get("/evaluations/{sessionID}", GetEvaluationHandler(svc))
	r.Post("/evaluations/{sessionID}/submit", SubmitEvaluationHandler(svc))
	return r
}

func newEvalService(responses ...llm.MockResponse) *evaluation.Service {
	client := tutor.NewClient(llm.NewMockProvider(responses...), tutor.DefaultConfig())
	return evaluation.NewService(client, evaluation.NewSessionStore(time.Minute), evaluation.NewInMemoryStore())
}

func TestEvaluationRoundTrip(t *testing.T) {
	svc := newEvalService(
		llm.MockResponse{Text: handlerQuizJSON},
	)
	router := newTestRouter(svc, "u1")

	// Start hides the answer key from the response body.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/evaluations", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status=%d body=%s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "correct_answer") {
		t.Fatalf("answer key leaked: %s", rec.Body)
	}
	var started struct {
		SessionID string `json:"session_id"`
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.SessionID == "" || len(started.Questions) != 1 {
		t.Fatalf("start response: %+v", started)
	}

	// The session can be re-fetched by its owner.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/evaluations/"+started.SessionID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status=%d", rec.Code)
	}

	// A fully correct submission needs no further AI calls.
	body, _ := json.Marshal(map[string]any{
		"answers": map[string]string{started.Questions[0].ID: "B"},
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/evaluations/"+started.SessionID+"/submit", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status=%d body=%s", rec.Code, rec.Body)
	}
	var result evaluation.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 1 || result.PointsDelta != 10 {
		t.Fatalf("result: %+v", result)
	}

	// The session is gone after submit.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/evaluations/"+started.SessionID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stale session status=%d", rec.Code)
	}
}

func TestStartEvaluation_ProviderDown(t *testing.T) {
	svc := newEvalService(llm.MockResponse{Err: &llm.ErrUnavailable{}})
	router := newTestRouter(svc, "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/evaluations", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), tutor.MsgUnavailable) {
		t.Fatalf("body=%s", rec.Body)
	}
}

func TestSubmitEvaluation_BadJSON(t *testing.T) {
	svc := newEvalService()
	router := newTestRouter(svc, "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/evaluations/x/submit", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/lumina-learn/lumina/internal/api/http"
	"github.com/lumina-learn/lumina/internal/audit"
	auth "github.com/lumina-learn/lumina/internal/auth/middleware"
	"github.com/lumina-learn/lumina/internal/config"
	"github.com/lumina-learn/lumina/internal/db"
	"github.com/lumina-learn/lumina/internal/evaluation"
	"github.com/lumina-learn/lumina/internal/llm"
	"github.com/lumina-learn/lumina/internal/rbac"
	"github.com/lumina-learn/lumina/internal/tutor"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- AI provider (injected handle, no package-level state) ---
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}
	tutorClient := tutor.NewClient(provider, tutor.DefaultConfig())

	// --- Evaluation orchestrator ---
	sessions := evaluation.NewSessionStore(cfg.SessionTTL)
	store := evaluation.NewSQLStore(dbh)
	svc := evaluation.NewService(tutorClient, sessions, store,
		evaluation.WithScorePolicy(evaluation.ScorePolicy{
			Reward:  cfg.RewardPoints,
			Penalty: cfg.PenaltyPoints,
		}),
		evaluation.WithNumQuestions(cfg.NumQuestions),
		evaluation.WithPracticeSize(cfg.PracticeSize),
		evaluation.WithTestDuration(cfg.TestDuration),
		evaluation.WithCallTimeout(cfg.AICallTimeout),
		evaluation.WithAudit(audit.NewEventRepo(dbh)),
	)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	// AI calls block the handler, so the request timeout must exceed the
	// per-call AI timeout.
	r.Use(middleware.Timeout(cfg.AICallTimeout + 30*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", api.LoginHandler(dbh, authSvc))

	// Protected API (JWT → role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Student flow
		pr.With(rbac.Require("eval:start")).
			Post("/evaluations", api.StartEvaluationHandler(svc))
		pr.With(rbac.Require("eval:view")).
			Get("/evaluations/{sessionID}", api.GetEvaluationHandler(svc))
		pr.With(rbac.Require("eval:submit")).
			Post("/evaluations/{sessionID}/submit", api.SubmitEvaluationHandler(svc))
		pr.With(rbac.Require("practice:create")).
			Post("/practice", api.StartPracticeHandler(svc))
		pr.With(rbac.Require("tutor:ask")).
			Post("/tutor/ask", api.AskTutorHandler(tutorClient))

		// Results
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", api.ListResultsHandler(svc))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{resultID}", api.GetResultHandler(svc))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, ai=%s model=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.AIProvider, provider.ModelID())
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func newProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	switch cfg.AIProvider {
	case "mock":
		// Dev-only: every call fails over to placeholder content.
		return llm.NewMockProvider(), nil
	default:
		return llm.NewGeminiProvider(ctx, llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
	}
}

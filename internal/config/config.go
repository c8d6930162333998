package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	CORSOrigins []string

	AuthSecret string

	// AI provider
	AIProvider    string // gemini|mock
	GeminiAPIKey  string
	GeminiModel   string
	AICallTimeout time.Duration

	// Evaluation tuning
	NumQuestions  int
	PracticeSize  int
	TestDuration  time.Duration
	SessionTTL    time.Duration
	RewardPoints  int
	PenaltyPoints int
}

func FromEnv() Config {
	return Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		AIProvider:    envOr("AI_PROVIDER", "gemini"),
		GeminiAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", ""),
		AICallTimeout: envDuration("AI_CALL_TIMEOUT", 60*time.Second),

		NumQuestions:  envInt("EVAL_NUM_QUESTIONS", 15),
		PracticeSize:  envInt("PRACTICE_NUM_QUESTIONS", 5),
		TestDuration:  envDuration("EVAL_TEST_DURATION", 15*time.Minute),
		SessionTTL:    envDuration("EVAL_SESSION_TTL", 20*time.Minute),
		RewardPoints:  envInt("EVAL_REWARD_POINTS", 10),
		PenaltyPoints: envInt("EVAL_PENALTY_POINTS", 5),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

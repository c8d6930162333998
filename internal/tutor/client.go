package tutor

import (
	"context"
	"log"

	"github.com/lumina-learn/lumina/internal/llm"
)

// Placeholder explanations used when the AI cannot deliver.
const (
	// PlaceholderBulkFailure replaces every explanation when the
	// batched explanation call fails entirely.
	PlaceholderBulkFailure = "Sorry, the AI could not generate an explanation for this question at this time."

	// PlaceholderMissingKey substitutes for a single question the AI
	// omitted from an otherwise valid explanation map.
	PlaceholderMissingKey = "Sorry, an explanation could not be generated for this question."
)

// AskFallback is returned by Ask when the AI service cannot be reached.
const AskFallback = "I seem to be having trouble connecting right now. Please ask again in a moment."

// Config tunes the AI calls the client makes.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns client defaults suitable for production use.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Temperature: 0.4,
	}
}

// Client wraps the AI provider with the five tutoring calls Lumina
// makes. It is an injected handle, constructed once at startup; there is
// no package-level provider state.
type Client struct {
	provider llm.Provider
	cfg      Config
}

// NewClient creates a tutoring client on top of the given provider.
func NewClient(provider llm.Provider, cfg Config) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// GenerateEvaluationTest asks the AI for a diagnostic test of
// numQuestions MCQs. The response is fence-stripped, decoded and schema
// checked; any failure is surfaced immediately (the caller aborts the
// flow on generation errors).
func (c *Client) GenerateEvaluationTest(ctx context.Context, numQuestions int) ([]Question, error) {
	raw, err := c.provider.Generate(ctx, llm.Request{
		Prompt:      buildEvaluationPrompt(numQuestions),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return decodeQuiz(raw)
}

// AnalyzePerformance sends the wrong-answer triples to the AI and
// returns its weakness analysis. Callers degrade to placeholder content
// on error rather than aborting.
func (c *Client) AnalyzePerformance(ctx context.Context, wrong []WrongAnswer) (Analysis, error) {
	raw, err := c.provider.Generate(ctx, llm.Request{
		Prompt:      buildAnalysisPrompt(wrong),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Analysis{}, err
	}
	var a Analysis
	if err := Decode(raw, &a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// BulkExplanations fetches explanations for all wrong answers in one
// batched call. The returned map always has a non-empty entry for every
// wrong answer: if the call fails entirely, each question gets
// PlaceholderBulkFailure.
func (c *Client) BulkExplanations(ctx context.Context, wrong []WrongAnswer) map[string]string {
	raw, err := c.provider.Generate(ctx, llm.Request{
		Prompt:      buildExplanationsPrompt(wrong),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err == nil {
		var out map[string]string
		if derr := Decode(raw, &out); derr == nil {
			return out
		} else {
			err = derr
		}
	}
	log.Printf("tutor: bulk explanations failed: %v", err)

	failed := make(map[string]string, len(wrong))
	for _, w := range wrong {
		failed[w.QuestionText] = PlaceholderBulkFailure
	}
	return failed
}

// GeneratePracticeQuiz builds a targeted quiz from identified
// weaknesses.
func (c *Client) GeneratePracticeQuiz(ctx context.Context, weaknesses []string, numQuestions int) ([]Question, error) {
	raw, err := c.provider.Generate(ctx, llm.Request{
		Prompt:      buildPracticePrompt(weaknesses, numQuestions),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return decodeQuiz(raw)
}

// Ask answers a free-form student question with plain text. Connectivity
// problems degrade to AskFallback instead of an error.
func (c *Client) Ask(ctx context.Context, question string) string {
	raw, err := c.provider.Generate(ctx, llm.Request{
		Prompt:      buildAskPrompt(question),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		log.Printf("tutor: ask failed: %v", err)
		return AskFallback
	}
	return raw
}

func decodeQuiz(raw string) ([]Question, error) {
	var payload quizPayload
	if err := Decode(raw, &payload); err != nil {
		return nil, err
	}
	if err := validateQuiz(stripFences(raw)); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

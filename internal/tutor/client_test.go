package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-learn/lumina/internal/llm"
)

const validQuizJSON = `{
	"questions": [
		{
			"question_text": "Choose the word nearest in meaning to 'abundant'.",
			"options": {"A": "scarce", "B": "plentiful", "C": "empty", "D": "rare"},
			"correct_answer": "B",
			"topic": "Lexis"
		},
		{
			"question_text": "Which word has the same vowel sound as 'seat'?",
			"options": {"A": "sit", "B": "set", "C": "feet", "D": "sat"},
			"correct_answer": "C",
			"topic": "Orals"
		}
	]
}`

func newTestClient(responses ...llm.MockResponse) (*Client, *llm.MockProvider) {
	p := llm.NewMockProvider(responses...)
	return NewClient(p, DefaultConfig()), p
}

func sampleWrong() []WrongAnswer {
	return []WrongAnswer{
		{
			QuestionText:  "Choose the word nearest in meaning to 'abundant'.",
			Options:       map[string]string{"A": "scarce", "B": "plentiful"},
			UserAnswer:    "A",
			CorrectAnswer: "B",
		},
		{
			QuestionText:  "Which word has the same vowel sound as 'seat'?",
			Options:       map[string]string{"A": "sit", "C": "feet"},
			UserAnswer:    "",
			CorrectAnswer: "C",
		},
	}
}

func TestGenerateEvaluationTest(t *testing.T) {
	c, p := newTestClient(llm.MockResponse{Text: "```json\n" + validQuizJSON + "\n```"})

	qs, err := c.GenerateEvaluationTest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "B", qs[0].CorrectAnswer)
	assert.Equal(t, "Orals", qs[1].Topic)
	assert.Equal(t, 1, p.CallCount())
}

func TestGenerateEvaluationTest_Malformed(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Text: "here are your questions: 1) ..."})

	_, err := c.GenerateEvaluationTest(context.Background(), 15)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestGenerateEvaluationTest_SchemaViolation(t *testing.T) {
	// Valid JSON, wrong shape: questions present but missing the answer key.
	c, _ := newTestClient(llm.MockResponse{
		Text: `{"questions":[{"question_text":"q","options":{"A":"a","B":"b"}}]}`,
	})

	_, err := c.GenerateEvaluationTest(context.Background(), 1)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestGenerateEvaluationTest_Empty(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Text: "   "})

	_, err := c.GenerateEvaluationTest(context.Background(), 15)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateEvaluationTest_ProviderDown(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Err: &llm.ErrUnavailable{Err: errors.New("dial tcp")}})

	_, err := c.GenerateEvaluationTest(context.Background(), 15)
	var unavailable *llm.ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestAnalyzePerformance(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{
		Text: `{"weakness_summary":"Keep practicing!","detailed_weaknesses":["Difficulty with synonyms","Trouble with vowel sounds"]}`,
	})

	a, err := c.AnalyzePerformance(context.Background(), sampleWrong())
	require.NoError(t, err)
	assert.Equal(t, "Keep practicing!", a.WeaknessSummary)
	assert.Len(t, a.DetailedWeaknesses, 2)
}

func TestBulkExplanations_AllKeysNonEmpty(t *testing.T) {
	wrong := sampleWrong()
	c, _ := newTestClient(llm.MockResponse{
		Text: `{"Choose the word nearest in meaning to 'abundant'.":"B is correct because plentiful means abundant.",
"Which word has the same vowel sound as 'seat'?":"C is correct because feet has the long e sound."}`,
	})

	out := c.BulkExplanations(context.Background(), wrong)
	require.Len(t, out, 2)
	for _, w := range wrong {
		assert.NotEmpty(t, out[w.QuestionText])
	}
}

func TestBulkExplanations_FullFailureUsesPlaceholders(t *testing.T) {
	wrong := sampleWrong()
	c, _ := newTestClient(llm.MockResponse{Err: &llm.ErrUnavailable{}})

	out := c.BulkExplanations(context.Background(), wrong)
	require.Len(t, out, len(wrong))
	for _, w := range wrong {
		assert.Equal(t, PlaceholderBulkFailure, out[w.QuestionText])
	}
}

func TestBulkExplanations_MalformedUsesPlaceholders(t *testing.T) {
	wrong := sampleWrong()
	c, _ := newTestClient(llm.MockResponse{Text: "not json at all"})

	out := c.BulkExplanations(context.Background(), wrong)
	require.Len(t, out, len(wrong))
	for _, w := range wrong {
		assert.Equal(t, PlaceholderBulkFailure, out[w.QuestionText])
	}
}

func TestAsk_Fallback(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Err: &llm.ErrUnavailable{}})
	got := c.Ask(context.Background(), "What is a synonym?")
	assert.Equal(t, AskFallback, got)
}

func TestAsk_PassesThroughText(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Text: "A synonym is a word with the same meaning."})
	got := c.Ask(context.Background(), "What is a synonym?")
	assert.Equal(t, "A synonym is a word with the same meaning.", got)
}

package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumina-learn/lumina/internal/audit"
	"github.com/lumina-learn/lumina/internal/llm"
	"github.com/lumina-learn/lumina/internal/tutor"
)

const quizJSON = `{
	"questions": [
		{"question_text": "Pick the synonym of 'happy'.",
		 "options": {"A": "joyful", "B": "sad", "C": "angry", "D": "tired"},
		 "correct_answer": "A", "topic": "Lexis"},
		{"question_text": "What is the main idea of the passage?",
		 "options": {"A": "travel", "B": "friendship", "C": "farming", "D": "school"},
		 "correct_answer": "B", "topic": "Comprehension"},
		{"question_text": "Which word is stressed on the second syllable?",
		 "options": {"A": "table", "B": "pencil", "C": "arrive", "D": "mother"},
		 "correct_answer": "C", "topic": "Orals"}
	]
}`

const analysisJSON = `{"weakness_summary":"Good effort. Focus on stress patterns.",
"detailed_weaknesses":["Trouble identifying stress in disyllabic words"]}`

type fakeRecorder struct {
	events []audit.Event
}

func (f *fakeRecorder) Append(_ context.Context, e audit.Event) error {
	f.events = append(f.events, e)
	return nil
}

func newTestService(t *testing.T, responses ...llm.MockResponse) (*Service, *llm.MockProvider, Store, *fakeRecorder) {
	t.Helper()
	provider := llm.NewMockProvider(responses...)
	client := tutor.NewClient(provider, tutor.DefaultConfig())
	store := NewInMemoryStore()
	rec := &fakeRecorder{}
	svc := NewService(client, NewSessionStore(20*time.Minute), store,
		WithNumQuestions(3),
		WithAudit(rec),
	)
	return svc, provider, store, rec
}

// Explanations keyed by the exact question text, as the AI contract
// requires.
const explanationsJSON = `{"Pick the synonym of 'happy'.":"A is correct; joyful means happy.",
"What is the main idea of the passage?":"B is correct; the passage is about friendship.",
"Which word is stressed on the second syllable?":"C is correct; arrive is stressed on -rive."}`

func TestStart_OpensSessionWithDeadline(t *testing.T) {
	svc, provider, _, _ := newTestService(t, llm.MockResponse{Text: quizJSON})

	sess, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(sess.Questions) != 3 {
		t.Fatalf("questions=%d want 3", len(sess.Questions))
	}
	if got := sess.Deadline.Sub(sess.StartedAt); got != 15*time.Minute {
		t.Fatalf("deadline=%v want 15m", got)
	}
	if provider.CallCount() != 1 {
		t.Fatalf("calls=%d want 1", provider.CallCount())
	}
	// Session is retrievable by its owner only.
	if _, err := svc.Get(sess.ID, "u1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Get(sess.ID, "intruder"); err == nil {
		t.Fatal("expected not found for foreign user")
	}
}

func TestStart_GenerationFailureAborts(t *testing.T) {
	svc, _, _, _ := newTestService(t, llm.MockResponse{Err: &llm.ErrUnavailable{Err: errors.New("boom")}})

	if _, err := svc.Start(context.Background(), "u1"); err == nil {
		t.Fatal("expected generation error to abort the flow")
	}
}

func TestSubmit_MergesAnalysisAndExplanations(t *testing.T) {
	svc, _, store, rec := newTestService(t, llm.MockResponse{Text: quizJSON})

	sess, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	svc.tutor = tutorClientWith(t,
		llm.MockResponse{Text: analysisJSON},
		llm.MockResponse{Text: explanationsJSON},
	)

	// q-1 correct, q-2 wrong, q-3 unanswered.
	result, err := svc.Submit(context.Background(), sess.ID, "u1", map[string]string{
		"q-1": "A",
		"q-2": "D",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Score != 1 || result.TotalQuestions != 3 {
		t.Fatalf("score=%d/%d", result.Score, result.TotalQuestions)
	}
	if result.PointsDelta != 10-2*5 {
		t.Fatalf("delta=%d", result.PointsDelta)
	}
	if result.WeaknessSummary != "Good effort. Focus on stress patterns." {
		t.Fatalf("summary=%q", result.WeaknessSummary)
	}
	if len(result.DetailedWeaknesses) != 1 {
		t.Fatalf("weaknesses=%v", result.DetailedWeaknesses)
	}

	for _, item := range result.Snapshot {
		if item.IsCorrect && item.Explanation != "" {
			t.Fatalf("correct answer should keep empty explanation: %+v", item)
		}
		if !item.IsCorrect && item.Explanation == "" {
			t.Fatalf("wrong answer missing explanation: %+v", item)
		}
	}

	// Result persisted and session closed.
	if _, err := store.GetResult(context.Background(), result.ID); err != nil {
		t.Fatalf("result not persisted: %v", err)
	}
	if _, err := svc.Get(sess.ID, "u1"); err == nil {
		t.Fatal("session should be deleted after submit")
	}
	if len(rec.events) != 1 || rec.events[0].Type != audit.EvaluationSubmitted {
		t.Fatalf("audit events: %+v", rec.events)
	}
}

func TestSubmit_AnalysisFailureDegrades(t *testing.T) {
	svc, _, _, _ := newTestService(t, llm.MockResponse{Text: quizJSON})

	sess, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	svc.tutor = tutorClientWith(t,
		llm.MockResponse{Err: &llm.ErrUnavailable{}}, // analysis fails
		llm.MockResponse{Text: explanationsJSON},
	)

	result, err := svc.Submit(context.Background(), sess.ID, "u1", map[string]string{"q-1": "B"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.WeaknessSummary != analysisFailedSummary {
		t.Fatalf("summary=%q", result.WeaknessSummary)
	}
	if len(result.DetailedWeaknesses) != 0 {
		t.Fatalf("weaknesses=%v", result.DetailedWeaknesses)
	}
	// Explanations still merged despite the failed analysis call.
	for _, item := range result.Snapshot {
		if !item.IsCorrect && item.Explanation == "" {
			t.Fatalf("wrong answer missing explanation: %+v", item)
		}
	}
}

func TestSubmit_OmittedExplanationKeyGetsPlaceholder(t *testing.T) {
	svc, _, _, _ := newTestService(t, llm.MockResponse{Text: quizJSON})

	sess, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// The AI answers only one of the three questions it was asked about.
	svc.tutor = tutorClientWith(t,
		llm.MockResponse{Text: analysisJSON},
		llm.MockResponse{Text: `{"Pick the synonym of 'happy'.":"A is correct; joyful means happy."}`},
	)

	result, err := svc.Submit(context.Background(), sess.ID, "u1", map[string]string{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	placeholders := 0
	for _, item := range result.Snapshot {
		if item.Explanation == "" {
			t.Fatalf("empty explanation for wrong answer: %+v", item)
		}
		if item.Explanation == tutor.PlaceholderMissingKey {
			placeholders++
		}
	}
	if placeholders != 2 {
		t.Fatalf("placeholders=%d want 2", placeholders)
	}
}

func TestSubmit_AllCorrectSkipsAICalls(t *testing.T) {
	svc, _, _, _ := newTestService(t, llm.MockResponse{Text: quizJSON})

	sess, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// No canned responses queued: any AI call would fail the submit.
	provider := llm.NewMockProvider()
	svc.tutor = tutor.NewClient(provider, tutor.DefaultConfig())

	result, err := svc.Submit(context.Background(), sess.ID, "u1", map[string]string{
		"q-1": "A", "q-2": "B", "q-3": "C",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if provider.CallCount() != 0 {
		t.Fatalf("AI calls=%d want 0", provider.CallCount())
	}
	if result.Score != 3 || len(result.DetailedWeaknesses) != 0 {
		t.Fatalf("score=%d weaknesses=%v", result.Score, result.DetailedWeaknesses)
	}
	if result.PointsDelta != 30 {
		t.Fatalf("delta=%d", result.PointsDelta)
	}
}

func TestSubmit_UnknownSession(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), "nope", "u1", nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestStartPractice_RequiresWeaknesses(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.StartPractice(context.Background(), "u1", nil); err == nil {
		t.Fatal("expected error for empty weaknesses")
	}
}

func tutorClientWith(t *testing.T, responses ...llm.MockResponse) *tutor.Client {
	t.Helper()
	return tutor.NewClient(llm.NewMockProvider(responses...), tutor.DefaultConfig())
}

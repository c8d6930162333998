package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lumina-learn/lumina/internal/audit"
	"github.com/lumina-learn/lumina/internal/tutor"
)

// Analysis fallbacks used when the AI cannot deliver.
const (
	analysisFailedSummary  = "Analysis could not be generated."
	perfectSummary         = "Excellent work! You answered every question correctly, so no weaknesses were identified in this attempt."
	defaultTestDuration    = 15 * time.Minute
	defaultNumQuestions    = 15
	defaultPracticeSize    = 5
	defaultCallTimeout     = 60 * time.Second
	defaultSessionLifetime = 20 * time.Minute
)

// Option tunes a Service.
type Option func(*Service)

func WithScorePolicy(p ScorePolicy) Option { return func(s *Service) { s.policy = p } }
func WithNumQuestions(n int) Option        { return func(s *Service) { s.numQuestions = n } }
func WithPracticeSize(n int) Option        { return func(s *Service) { s.practiceSize = n } }
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) { s.callTimeout = d }
}
func WithTestDuration(d time.Duration) Option {
	return func(s *Service) { s.testDuration = d }
}
func WithAudit(rec audit.Recorder) Option { return func(s *Service) { s.audit = rec } }

// Service orchestrates the evaluation flow: generate, present, score,
// analyze, explain, persist. All AI calls are synchronous and bounded by
// a per-call timeout.
type Service struct {
	tutor    *tutor.Client
	sessions *SessionStore
	store    Store
	audit    audit.Recorder

	policy       ScorePolicy
	numQuestions int
	practiceSize int
	callTimeout  time.Duration
	testDuration time.Duration
	now          func() time.Time
}

// NewService wires the orchestrator. The session store may be shared
// with other services; the audit recorder is optional.
func NewService(tc *tutor.Client, sessions *SessionStore, store Store, opts ...Option) *Service {
	s := &Service{
		tutor:        tc,
		sessions:     sessions,
		store:        store,
		policy:       DefaultScorePolicy(),
		numQuestions: defaultNumQuestions,
		practiceSize: defaultPracticeSize,
		callTimeout:  defaultCallTimeout,
		testDuration: defaultTestDuration,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DefaultSessionTTL is a sensible lifetime for the session store backing
// a Service: test duration plus grace for a slow submit.
func DefaultSessionTTL() time.Duration { return defaultSessionLifetime }

// Start generates a fresh diagnostic test and opens a session for it.
// Generation failure aborts the flow; the error carries one of the three
// AI failure kinds for the handler to translate.
func (s *Service) Start(ctx context.Context, userID string) (Session, error) {
	questions, err := s.generate(ctx, func(ctx context.Context) ([]tutor.Question, error) {
		return s.tutor.GenerateEvaluationTest(ctx, s.numQuestions)
	})
	if err != nil {
		return Session{}, err
	}
	return s.openSession(userID, "evaluation", questions), nil
}

// StartPractice opens a session with a quiz targeted at the given
// weaknesses.
func (s *Service) StartPractice(ctx context.Context, userID string, weaknesses []string) (Session, error) {
	if len(weaknesses) == 0 {
		return Session{}, fmt.Errorf("at least one weakness is required")
	}
	questions, err := s.generate(ctx, func(ctx context.Context) ([]tutor.Question, error) {
		return s.tutor.GeneratePracticeQuiz(ctx, weaknesses, s.practiceSize)
	})
	if err != nil {
		return Session{}, err
	}
	return s.openSession(userID, "practice", questions), nil
}

// Get returns the caller's in-flight session.
func (s *Service) Get(sessionID, userID string) (Session, error) {
	return s.sessions.Get(sessionID, userID)
}

// Submit scores the answers, enriches wrong ones with AI analysis and
// explanations, persists the merged record, applies the points delta,
// and closes the session. Analysis and explanation failures degrade to
// placeholder content; only an unknown session aborts.
func (s *Service) Submit(ctx context.Context, sessionID, userID string, answers map[string]string) (Result, error) {
	sess, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return Result{}, err
	}

	out := s.policy.grade(sess.Questions, answers)

	analysis := tutor.Analysis{
		WeaknessSummary:    perfectSummary,
		DetailedWeaknesses: []string{},
	}
	if len(out.Wrong) > 0 {
		analysis = s.analyze(ctx, out.Wrong)
		s.explain(ctx, out.Wrong, out.Snapshot)
	}

	result := Result{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Score:              out.Score,
		TotalQuestions:     len(sess.Questions),
		PointsDelta:        out.PointsDelta,
		WeaknessSummary:    analysis.WeaknessSummary,
		DetailedWeaknesses: analysis.DetailedWeaknesses,
		Snapshot:           out.Snapshot,
		CreatedAt:          s.now().Unix(),
	}

	if err := s.store.SaveResult(ctx, result); err != nil {
		return Result{}, fmt.Errorf("save result: %w", err)
	}
	if err := s.store.AddPoints(ctx, userID, result.PointsDelta); err != nil {
		// The result is already durable; a failed points update should
		// not lose it.
		log.Printf("evaluation: add points for %s: %v", userID, err)
	}
	s.record(ctx, result)
	s.sessions.Delete(sessionID)

	return result, nil
}

// Result fetches a persisted result by ID.
func (s *Service) Result(ctx context.Context, id string) (Result, error) {
	return s.store.GetResult(ctx, id)
}

// Results lists a user's results, newest first.
func (s *Service) Results(ctx context.Context, userID string, limit, offset int) ([]Result, error) {
	return s.store.ListResults(ctx, userID, limit, offset)
}

func (s *Service) generate(ctx context.Context, call func(context.Context) ([]tutor.Question, error)) ([]SessionQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	questions, err := call(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SessionQuestion, len(questions))
	for i, q := range questions {
		out[i] = SessionQuestion{ID: fmt.Sprintf("q-%d", i+1), Question: q}
	}
	return out, nil
}

func (s *Service) openSession(userID, kind string, questions []SessionQuestion) Session {
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Questions: questions,
		StartedAt: now,
		Deadline:  now.Add(s.testDuration),
	}
	s.sessions.Put(sess)
	return sess
}

func (s *Service) analyze(ctx context.Context, wrong []tutor.WrongAnswer) tutor.Analysis {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	analysis, err := s.tutor.AnalyzePerformance(ctx, wrong)
	if err != nil {
		log.Printf("evaluation: analysis failed: %v", err)
		return tutor.Analysis{
			WeaknessSummary:    analysisFailedSummary,
			DetailedWeaknesses: []string{},
		}
	}
	if analysis.DetailedWeaknesses == nil {
		analysis.DetailedWeaknesses = []string{}
	}
	return analysis
}

// explain merges batched explanations into the snapshot, wrong answers
// only. Every wrong answer ends up with a non-empty explanation: a
// question the AI omitted gets a question-specific placeholder.
func (s *Service) explain(ctx context.Context, wrong []tutor.WrongAnswer, snapshot []QuestionResult) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	explanations := s.tutor.BulkExplanations(ctx, wrong)

	for i := range snapshot {
		if snapshot[i].IsCorrect {
			continue
		}
		text := explanations[snapshot[i].QuestionText]
		if text == "" {
			text = tutor.PlaceholderMissingKey
		}
		snapshot[i].Explanation = text
	}
}

func (s *Service) record(ctx context.Context, r Result) {
	if s.audit == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{
		"result_id": r.ID,
		"user_id":   r.UserID,
		"score":     r.Score,
		"total":     r.TotalQuestions,
	})
	if err := s.audit.Append(ctx, audit.Event{
		Type:     audit.EvaluationSubmitted,
		Key:      r.ID,
		DataJSON: string(data),
	}); err != nil {
		log.Printf("evaluation: audit append: %v", err)
	}
}

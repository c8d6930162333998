package evaluation

import "github.com/lumina-learn/lumina/internal/tutor"

// QuestionResult is one entry of a result snapshot: the question, what
// the student answered, and (for wrong answers) the AI explanation.
// Correct answers keep an empty explanation.
type QuestionResult struct {
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	Topic         string            `json:"topic"`
	UserAnswer    string            `json:"user_answer"`
	CorrectAnswer string            `json:"correct_answer"`
	IsCorrect     bool              `json:"is_correct"`
	Explanation   string            `json:"explanation"`
}

// Result is the persisted record of one completed evaluation. Immutable
// after creation; owned by one user.
type Result struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	Score              int              `json:"score"`
	TotalQuestions     int              `json:"total_questions"`
	PointsDelta        int              `json:"points_delta"`
	WeaknessSummary    string           `json:"weakness_summary"`
	DetailedWeaknesses []string         `json:"detailed_weaknesses"`
	Snapshot           []QuestionResult `json:"snapshot"`
	CreatedAt          int64            `json:"created_at"`
}

// SessionQuestion is a generated question plus the ID it is addressed by
// while the test is in flight.
type SessionQuestion struct {
	ID string `json:"id"`
	tutor.Question
}

package tutor

// Question is one generated multiple-choice question as returned by the
// AI service. Questions are ephemeral: they live in the evaluation
// session and inside persisted result snapshots, never as rows.
type Question struct {
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"` // "A".."D" -> text
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Topic         string            `json:"topic"` // Lexis | Comprehension | Orals
}

// WrongAnswer is the triple sent to the AI for analysis and explanation.
type WrongAnswer struct {
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	UserAnswer    string            `json:"user_answer"`
	CorrectAnswer string            `json:"correct_answer"`
}

// Analysis is the AI's performance assessment of a completed test.
type Analysis struct {
	WeaknessSummary    string   `json:"weakness_summary"`
	DetailedWeaknesses []string `json:"detailed_weaknesses"`
}

// quizPayload is the wire shape of generated tests and practice quizzes.
type quizPayload struct {
	Questions []Question `json:"questions"`
}

package evaluation

import "github.com/lumina-learn/lumina/internal/tutor"

// ScorePolicy is the fixed reward/penalty applied to the user's
// cumulative points: a correct answer adds Reward, an incorrect or
// missing answer subtracts Penalty.
type ScorePolicy struct {
	Reward  int
	Penalty int
}

// DefaultScorePolicy matches the classic +10/-5 scheme.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{Reward: 10, Penalty: 5}
}

// outcome is the graded view of one submission before AI enrichment.
type outcome struct {
	Score       int
	PointsDelta int
	Wrong       []tutor.WrongAnswer
	Snapshot    []QuestionResult
}

// grade walks the question set in order, comparing each submitted answer
// label against the key. An unanswered question counts as incorrect.
func (p ScorePolicy) grade(questions []SessionQuestion, answers map[string]string) outcome {
	var out outcome
	for _, q := range questions {
		userAnswer := answers[q.ID]
		isCorrect := userAnswer == q.CorrectAnswer

		if isCorrect {
			out.Score++
			out.PointsDelta += p.Reward
		} else {
			out.PointsDelta -= p.Penalty
			out.Wrong = append(out.Wrong, tutor.WrongAnswer{
				QuestionText:  q.QuestionText,
				Options:       q.Options,
				UserAnswer:    userAnswer,
				CorrectAnswer: q.CorrectAnswer,
			})
		}

		out.Snapshot = append(out.Snapshot, QuestionResult{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			Topic:         q.Topic,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   "",
		})
	}
	return out
}

// internal/quiz/scoring.go
package quiz

import (
	"strings"

	"github.com/kaqfa/student-space/internal/models"
)

// NormalizeAnswer trims and uppercases a raw answer.
func NormalizeAnswer(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func ComputePoints(isCorrect bool, questionPoints int) int {
	if isCorrect {
		return questionPoints
	}
	return 0
}

// ScorePercent is earned/max as a percentage; 0 when nothing was attainable.
func ScorePercent(earned, maxPoints int) float64 {
	if maxPoints <= 0 {
		return 0
	}
	return float64(earned) / float64(maxPoints) * 100
}

// Grade applies a normalized answer to an attempt. Only multiple-choice
// questions are auto-graded; other types keep their stored correctness.
func Grade(attempt *models.Attempt, question *models.Question, answer string) {
	attempt.AnswerGiven = answer
	if question.IsMultipleChoice() {
		attempt.IsCorrect = answer == strings.ToUpper(question.AnswerKey)
	}
	attempt.PointsEarned = ComputePoints(attempt.IsCorrect, question.Points)
}

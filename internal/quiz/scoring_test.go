// internal/quiz/scoring_test.go
package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaqfa/student-space/internal/models"
)

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "B", NormalizeAnswer("  b\n"))
	assert.Equal(t, "", NormalizeAnswer("   "))
	assert.Equal(t, "PHOTOSYNTHESIS", NormalizeAnswer("Photosynthesis"))
}

func TestScorePercent(t *testing.T) {
	assert.InDelta(t, 75.0, ScorePercent(30, 40), 0.0001)
	assert.InDelta(t, 100.0, ScorePercent(40, 40), 0.0001)
	assert.Zero(t, ScorePercent(0, 40))
	assert.Zero(t, ScorePercent(0, 0))
}

func TestGradeMultipleChoice(t *testing.T) {
	q := &models.Question{Type: models.QuestionMultipleChoice, AnswerKey: "c", Points: 15}

	a := &models.Attempt{}
	Grade(a, q, "C")
	assert.True(t, a.IsCorrect)
	assert.Equal(t, 15, a.PointsEarned)
	assert.Equal(t, "C", a.AnswerGiven)

	Grade(a, q, "A")
	assert.False(t, a.IsCorrect)
	assert.Zero(t, a.PointsEarned)
	assert.Equal(t, "A", a.AnswerGiven)
}

func TestGradeLeavesOtherTypesUngraded(t *testing.T) {
	q := &models.Question{Type: models.QuestionEssay, AnswerKey: "anything", Points: 20}

	a := &models.Attempt{}
	Grade(a, q, "ANYTHING")
	assert.False(t, a.IsCorrect)
	assert.Zero(t, a.PointsEarned)

	graded := &models.Attempt{IsCorrect: true}
	Grade(graded, q, "MY ESSAY")
	assert.True(t, graded.IsCorrect)
	assert.Equal(t, 20, graded.PointsEarned)
}

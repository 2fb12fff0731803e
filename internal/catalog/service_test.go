// internal/catalog/service_test.go
package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/models"
	"github.com/kaqfa/student-space/pkg/database/dbtest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(dbtest.New(t)), zap.NewNop())
}

func TestSubjectsAndTopics(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	math3, err := s.CreateSubject(ctx, models.RoleParent, SubjectInput{Name: "Math", Grade: 3})
	require.NoError(t, err)
	_, err = s.CreateSubject(ctx, models.RoleAdmin, SubjectInput{Name: "Math", Grade: 4})
	require.NoError(t, err)

	_, err = s.CreateSubject(ctx, models.RoleParent, SubjectInput{Name: "Math", Grade: 3})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = s.CreateSubject(ctx, models.RoleStudent, SubjectInput{Name: "Art", Grade: 3})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.CreateSubject(ctx, models.RoleParent, SubjectInput{Name: "Art", Grade: 7})
	var ve validator.ValidationErrors
	assert.True(t, errors.As(err, &ve))

	all, err := s.ListSubjects(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	grade3, err := s.ListSubjects(ctx, 3)
	require.NoError(t, err)
	require.Len(t, grade3, 1)
	assert.Equal(t, math3.ID, grade3[0].ID)

	topic, err := s.CreateTopic(ctx, models.RoleParent, TopicInput{SubjectID: math3.ID, Name: "Fractions"})
	require.NoError(t, err)
	assert.Equal(t, math3.ID, topic.SubjectID)

	_, err = s.CreateTopic(ctx, models.RoleParent, TopicInput{SubjectID: 404, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAndListQuestions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	math, err := s.CreateSubject(ctx, models.RoleParent, SubjectInput{Name: "Math", Grade: 3})
	require.NoError(t, err)
	science, err := s.CreateSubject(ctx, models.RoleParent, SubjectInput{Name: "Science", Grade: 3})
	require.NoError(t, err)
	mathTopic, err := s.CreateTopic(ctx, models.RoleParent, TopicInput{SubjectID: math.ID, Name: "Addition"})
	require.NoError(t, err)
	sciTopic, err := s.CreateTopic(ctx, models.RoleParent, TopicInput{SubjectID: science.ID, Name: "Plants"})
	require.NoError(t, err)

	q, err := s.CreateQuestion(ctx, 1, models.RoleParent, QuestionInput{
		TopicID:   mathTopic.ID,
		Text:      "2 + 2 = ?",
		Type:      models.QuestionMultipleChoice,
		Options:   []string{"3", "4", "5", "6"},
		AnswerKey: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "B", q.AnswerKey)
	assert.Equal(t, models.DefaultQuestionPoints, q.Points)
	assert.Equal(t, models.DefaultQuestionEstimatedTime, q.EstimatedTime)
	assert.Equal(t, models.DifficultyMedium, q.Difficulty)
	require.NotNil(t, q.CreatedByID)
	assert.Equal(t, uint(1), *q.CreatedByID)

	_, err = s.CreateQuestion(ctx, 1, models.RoleParent, QuestionInput{
		TopicID:   sciTopic.ID,
		Text:      "Why are leaves green?",
		Type:      models.QuestionEssay,
		AnswerKey: "chlorophyll",
		Points:    20,
	})
	require.NoError(t, err)

	_, err = s.CreateQuestion(ctx, 1, models.RoleParent, QuestionInput{
		TopicID:   mathTopic.ID,
		Text:      "broken",
		Type:      models.QuestionMultipleChoice,
		Options:   []string{"only"},
		AnswerKey: "A",
	})
	assert.ErrorIs(t, err, ErrInvalidQuestion)

	_, err = s.CreateQuestion(ctx, 2, models.RoleStudent, QuestionInput{
		TopicID: mathTopic.ID, Text: "x", Type: models.QuestionEssay, AnswerKey: "x",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.CreateQuestion(ctx, 1, models.RoleParent, QuestionInput{
		TopicID: 999, Text: "x", Type: models.QuestionEssay, AnswerKey: "x",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListQuestions(ctx, QuestionFilter{Grade: 3})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mathOnly, err := s.ListQuestions(ctx, QuestionFilter{SubjectID: math.ID})
	require.NoError(t, err)
	require.Len(t, mathOnly, 1)
	assert.Equal(t, q.ID, mathOnly[0].ID)
	assert.Equal(t, []string{"3", "4", "5", "6"}, []string(mathOnly[0].Options))

	essays, err := s.ListQuestions(ctx, QuestionFilter{Type: models.QuestionEssay})
	require.NoError(t, err)
	require.Len(t, essays, 1)
	assert.Equal(t, 20, essays[0].Points)
}

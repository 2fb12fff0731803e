// internal/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("only parents and admins manage content")
	ErrDuplicate = errors.New("subject already exists for this grade")
)

var validate = validator.New()

type SubjectInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Grade int    `json:"grade" validate:"min=1,max=6"`
	Order int    `json:"order"`
}

type TopicInput struct {
	SubjectID   uint   `json:"subject_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type QuestionInput struct {
	TopicID       uint                `json:"topic_id" validate:"required"`
	Text          string              `json:"text" validate:"required"`
	Type          models.QuestionType `json:"type" validate:"required,oneof=multiple_choice essay fill_blank"`
	Difficulty    models.Difficulty   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Options       []string            `json:"options"`
	AnswerKey     string              `json:"answer_key" validate:"required"`
	Explanation   string              `json:"explanation"`
	Points        int                 `json:"points" validate:"min=0"`
	EstimatedTime int                 `json:"estimated_time" validate:"min=0"`
}

type Service struct {
	repo *Repository
	log  *zap.Logger
}

func NewService(repo *Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func canAuthor(role models.Role) error {
	if role != models.RoleParent && role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) CreateSubject(ctx context.Context, role models.Role, in SubjectInput) (*models.Subject, error) {
	if err := canAuthor(role); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	exists, err := s.repo.SubjectExists(ctx, in.Name, in.Grade)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicate
	}

	subject := &models.Subject{Name: in.Name, Grade: in.Grade, Order: in.Order}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *Service) ListSubjects(ctx context.Context, grade int) ([]models.Subject, error) {
	return s.repo.ListSubjects(ctx, grade)
}

func (s *Service) CreateTopic(ctx context.Context, role models.Role, in TopicInput) (*models.Topic, error) {
	if err := canAuthor(role); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetSubject(ctx, in.SubjectID); err != nil {
		return nil, fmt.Errorf("subject %d: %w", in.SubjectID, err)
	}

	topic := &models.Topic{
		SubjectID:   in.SubjectID,
		Name:        in.Name,
		Description: in.Description,
		Order:       in.Order,
	}
	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// CreateQuestion stores a question after shape validation. Points and
// estimated time fall back to their defaults when left at zero.
func (s *Service) CreateQuestion(ctx context.Context, authorID uint, role models.Role, in QuestionInput) (*models.Question, error) {
	if err := canAuthor(role); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTopic(ctx, in.TopicID); err != nil {
		return nil, fmt.Errorf("topic %d: %w", in.TopicID, err)
	}

	author := authorID
	question := &models.Question{
		TopicID:       in.TopicID,
		Text:          in.Text,
		Type:          in.Type,
		Difficulty:    in.Difficulty,
		Options:       in.Options,
		AnswerKey:     in.AnswerKey,
		Explanation:   in.Explanation,
		Points:        in.Points,
		EstimatedTime: in.EstimatedTime,
		CreatedByID:   &author,
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if question.Points == 0 {
		question.Points = models.DefaultQuestionPoints
	}
	if question.EstimatedTime == 0 {
		question.EstimatedTime = models.DefaultQuestionEstimatedTime
	}
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	s.log.Debug("question created", zap.Uint("question_id", question.ID), zap.Uint("topic_id", question.TopicID))
	return question, nil
}

func (s *Service) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	return s.repo.ListQuestions(ctx, f)
}

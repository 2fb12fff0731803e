// internal/catalog/repository.go
package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kaqfa/student-space/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *Repository) SubjectExists(ctx context.Context, name string, grade int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subject{}).
		Where("name = ? AND grade = ?", name, grade).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &subject, nil
}

func (r *Repository) ListSubjects(ctx context.Context, grade int) ([]models.Subject, error) {
	var subjects []models.Subject
	q := r.db.WithContext(ctx).Order(`grade, "order", name`)
	if grade > 0 {
		q = q.Where("grade = ?", grade)
	}
	err := q.Find(&subjects).Error
	return subjects, err
}

func (r *Repository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *Repository) GetTopic(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &topic, nil
}

func (r *Repository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

type QuestionFilter struct {
	SubjectID uint
	Grade     int
	Type      models.QuestionType
}

func (r *Repository) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	q := r.db.WithContext(ctx).Model(&models.Question{}).
		Joins("JOIN topics ON topics.id = questions.topic_id").
		Joins("JOIN subjects ON subjects.id = topics.subject_id")
	if f.SubjectID > 0 {
		q = q.Where("subjects.id = ?", f.SubjectID)
	}
	if f.Grade > 0 {
		q = q.Where("subjects.grade = ?", f.Grade)
	}
	if f.Type != "" {
		q = q.Where("questions.type = ?", f.Type)
	}

	var questions []models.Question
	err := q.Order("questions.id").Find(&questions).Error
	return questions, err
}

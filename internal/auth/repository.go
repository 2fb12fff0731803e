// internal/auth/repository.go
package auth

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

func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) CreateLink(ctx context.Context, link *models.ParentStudent) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repository) SaveLink(ctx context.Context, link *models.ParentStudent) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *Repository) GetLink(ctx context.Context, id uint) (*models.ParentStudent, error) {
	var link models.ParentStudent
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// FindLink returns nil when the pair has never been linked.
func (r *Repository) FindLink(ctx context.Context, parentID, studentID uint) (*models.ParentStudent, error) {
	var link models.ParentStudent
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND student_id = ?", parentID, studentID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// IsApprovedLink is the fact the proxy guard relies on.
func (r *Repository) IsApprovedLink(ctx context.Context, parentID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParentStudent{}).
		Where("parent_id = ? AND student_id = ? AND status = ?", parentID, studentID, models.LinkApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) LinkedStudents(ctx context.Context, parentID uint) ([]models.User, error) {
	var students []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN parent_students ON parent_students.student_id = users.id").
		Where("parent_students.parent_id = ? AND parent_students.status = ?", parentID, models.LinkApproved).
		Order("users.username").
		Find(&students).Error
	return students, err
}

func (r *Repository) PendingLinksForStudent(ctx context.Context, studentID uint) ([]models.ParentStudent, error) {
	var links []models.ParentStudent
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, models.LinkPending).
		Order("created_at desc").
		Find(&links).Error
	return links, err
}

// internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaqfa/student-space/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrForbidden          = errors.New("not allowed")
	ErrLinkExists         = errors.New("link already exists")
	ErrLinkNotPending     = errors.New("link is no longer pending")
	ErrGradeRequired      = errors.New("students need a grade between 1 and 6")
)

var validate = validator.New()

type RegisterInput struct {
	Username string      `json:"username" validate:"required,min=3,max=150"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Password string      `json:"password" validate:"required,min=6"`
	FullName string      `json:"full_name" validate:"max=200"`
	Role     models.Role `json:"role" validate:"required,oneof=parent student"`
	Grade    *int        `json:"grade" validate:"omitempty,min=1,max=6"`
}

type StudentInput struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=200"`
	Grade    int    `json:"grade" validate:"min=1,max=6"`
}

type Service struct {
	repo      *Repository
	jwtSecret []byte
	expire    time.Duration
	log       *zap.Logger
}

func NewService(repo *Repository, jwtSecret string, expire time.Duration, log *zap.Logger) *Service {
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		expire:    expire,
		log:       log,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.expire).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, user, nil
}

// Register creates a parent or student account. Admins are provisioned out of band.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == models.RoleStudent && in.Grade == nil {
		return nil, ErrGradeRequired
	}
	if in.Role != models.RoleStudent {
		in.Grade = nil
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Role:     in.Role,
		Grade:    in.Grade,
	}
	if err := s.createUser(ctx, s.repo, user, in.Password); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *Service) createUser(ctx context.Context, repo *Repository, user *models.User, password string) error {
	taken, err := repo.UsernameTaken(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return repo.CreateUser(ctx, user)
}

func (s *Service) requireParent(ctx context.Context, parentID uint) (*models.User, error) {
	parent, err := s.repo.GetUserByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, ErrForbidden
	}
	return parent, nil
}

// RegisterStudentForParent creates a student account already linked to the parent.
func (s *Service) RegisterStudentForParent(ctx context.Context, parentID uint, in StudentInput) (*models.User, error) {
	if _, err := s.requireParent(ctx, parentID); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	grade := in.Grade
	student := &models.User{
		Username: in.Username,
		FullName: in.FullName,
		Role:     models.RoleStudent,
		Grade:    &grade,
	}
	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		if err := s.createUser(ctx, tx, student, in.Password); err != nil {
			return err
		}
		now := time.Now()
		return tx.CreateLink(ctx, &models.ParentStudent{
			ParentID:        parentID,
			StudentID:       student.ID,
			Status:          models.LinkApproved,
			CreatedByParent: true,
			Notes:           "Account created by parent",
			VerifiedAt:      &now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("student created by parent", zap.Uint("parent_id", parentID), zap.Uint("student_id", student.ID))
	return student, nil
}

// RequestLink asks an existing student to accept the parent. A rejected
// request may be reopened.
func (s *Service) RequestLink(ctx context.Context, parentID uint, studentUsername, notes string) (*models.ParentStudent, error) {
	if _, err := s.requireParent(ctx, parentID); err != nil {
		return nil, err
	}
	student, err := s.repo.GetUserByUsername(ctx, studentUsername)
	if err != nil {
		return nil, fmt.Errorf("student %q: %w", studentUsername, err)
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("student %q: %w", studentUsername, ErrNotFound)
	}

	link, err := s.repo.FindLink(ctx, parentID, student.ID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		if link.Status != models.LinkRejected {
			return nil, ErrLinkExists
		}
		link.Status = models.LinkPending
		link.Notes = notes
		link.VerifiedAt = nil
		if err := s.repo.SaveLink(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	link = &models.ParentStudent{
		ParentID:  parentID,
		StudentID: student.ID,
		Status:    models.LinkPending,
		Notes:     notes,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// RespondLink lets the linked student approve or reject a pending request.
func (s *Service) RespondLink(ctx context.Context, studentID, linkID uint, approve bool) (*models.ParentStudent, error) {
	link, err := s.repo.GetLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("link %d: %w", linkID, err)
	}
	if link.StudentID != studentID {
		return nil, ErrForbidden
	}
	if link.Status != models.LinkPending {
		return nil, ErrLinkNotPending
	}

	now := time.Now()
	link.Status = models.LinkRejected
	if approve {
		link.Status = models.LinkApproved
	}
	link.VerifiedAt = &now
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, err
	}
	s.log.Info("link answered", zap.Uint("link_id", link.ID), zap.String("status", string(link.Status)))
	return link, nil
}

func (s *Service) LinkedStudents(ctx context.Context, parentID uint) ([]models.User, error) {
	return s.repo.LinkedStudents(ctx, parentID)
}

func (s *Service) PendingLinks(ctx context.Context, studentID uint) ([]models.ParentStudent, error) {
	return s.repo.PendingLinksForStudent(ctx, studentID)
}

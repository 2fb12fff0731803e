// internal/models/user.go
package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email"`
	Password  string    `json:"-" gorm:"not null"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role" gorm:"type:varchar(20);index;not null;default:student"`
	// Grade is only set for students (1-6).
	Grade *int `json:"grade,omitempty" gorm:"index"`
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) IsParentOrAdmin() bool {
	return u.Role == RoleParent || u.Role == RoleAdmin
}

type LinkStatus string

const (
	LinkPending  LinkStatus = "pending"
	LinkApproved LinkStatus = "approved"
	LinkRejected LinkStatus = "rejected"
)

// ParentStudent links a parent to a student. Only approved links grant proxy rights.
type ParentStudent struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	CreatedAt       time.Time  `json:"created_at"`
	ParentID        uint       `json:"parent_id" gorm:"uniqueIndex:idx_parent_student;not null"`
	StudentID       uint       `json:"student_id" gorm:"uniqueIndex:idx_parent_student;not null"`
	Status          LinkStatus `json:"status" gorm:"type:varchar(20);index;not null;default:pending"`
	CreatedByParent bool       `json:"created_by_parent"`
	Notes           string     `json:"notes"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
}

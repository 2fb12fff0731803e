// internal/quiz/guard.go
package quiz

import (
	"context"

	"github.com/kaqfa/student-space/internal/models"
)

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// LinkChecker answers whether a parent holds an approved link to a student.
type LinkChecker interface {
	IsApprovedLink(ctx context.Context, parentID, studentID uint) (bool, error)
}

type Guard struct {
	links LinkChecker
}

func NewGuard(links LinkChecker) *Guard {
	return &Guard{links: links}
}

// CanActFor is true for the student themself and for a parent with an approved link.
func (g *Guard) CanActFor(ctx context.Context, actor Actor, studentID uint) (bool, error) {
	if actor.ID == studentID {
		return true, nil
	}
	if actor.Role != models.RoleParent {
		return false, nil
	}
	return g.links.IsApprovedLink(ctx, actor.ID, studentID)
}

func (g *Guard) authorize(ctx context.Context, actor Actor, studentID uint) error {
	ok, err := g.CanActFor(ctx, actor, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthorization
	}
	return nil
}

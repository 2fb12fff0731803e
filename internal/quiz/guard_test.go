// internal/quiz/guard_test.go
package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaqfa/student-space/internal/models"
)

type staticLinks map[[2]uint]bool

func (s staticLinks) IsApprovedLink(_ context.Context, parentID, studentID uint) (bool, error) {
	return s[[2]uint{parentID, studentID}], nil
}

type failingLinks struct{ err error }

func (f failingLinks) IsApprovedLink(context.Context, uint, uint) (bool, error) {
	return false, f.err
}

func TestGuardCanActFor(t *testing.T) {
	g := NewGuard(staticLinks{{10, 1}: true})
	ctx := context.Background()

	cases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{name: "student for self", actor: Actor{ID: 1, Role: models.RoleStudent}, want: true},
		{name: "linked parent", actor: Actor{ID: 10, Role: models.RoleParent}, want: true},
		{name: "unlinked parent", actor: Actor{ID: 11, Role: models.RoleParent}, want: false},
		{name: "other student", actor: Actor{ID: 2, Role: models.RoleStudent}, want: false},
		{name: "admin is not a proxy", actor: Actor{ID: 10, Role: models.RoleAdmin}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := g.CanActFor(ctx, tc.actor, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)

			err = g.authorize(ctx, tc.actor, 1)
			if tc.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrAuthorization)
			}
		})
	}
}

func TestGuardPropagatesLookupErrors(t *testing.T) {
	boom := errors.New("db down")
	g := NewGuard(failingLinks{err: boom})

	err := g.authorize(context.Background(), Actor{ID: 10, Role: models.RoleParent}, 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAuthorization)
}

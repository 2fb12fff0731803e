// internal/quiz/fixture_test.go
package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaqfa/student-space/internal/auth"
	"github.com/kaqfa/student-space/internal/models"
	"github.com/kaqfa/student-space/pkg/database/dbtest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type event struct {
	Room string
	Type string
	Data interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(room, eventType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{Room: room, Type: eventType, Data: data})
}

func (r *recorder) types(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Room == room {
			out = append(out, e.Type)
		}
	}
	return out
}

type memCache struct {
	mu          sync.Mutex
	quizzes     map[uint]models.Quiz
	leaderboard map[uint][]models.LeaderboardEntry
}

func newMemCache() *memCache {
	return &memCache{
		quizzes:     make(map[uint]models.Quiz),
		leaderboard: make(map[uint][]models.LeaderboardEntry),
	}
}

func (c *memCache) SetQuiz(_ context.Context, quiz *models.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ID] = *quiz
	return nil
}

func (c *memCache) GetQuiz(_ context.Context, id uint) (*models.Quiz, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %d not cached", id)
	}
	return &q, nil
}

func (c *memCache) InvalidateQuiz(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quizzes, id)
	return nil
}

func (c *memCache) SetLeaderboard(_ context.Context, quizID uint, entries []models.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaderboard[quizID] = append([]models.LeaderboardEntry(nil), entries...)
	return nil
}

func (c *memCache) GetLeaderboard(_ context.Context, quizID uint, limit int) ([]models.LeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.leaderboard[quizID]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	repo   *Repository
	guard  *Guard
	svc    *Service
	clock  *fakeClock
	events *recorder
	cache  *memCache
	seed   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)

	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		repo:   NewRepository(db),
		clock:  &fakeClock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
		events: &recorder{},
		cache:  newMemCache(),
	}
	f.guard = NewGuard(auth.NewRepository(db))

	var seedMu sync.Mutex
	cfg := EngineConfig{
		Clock: f.clock.Now,
		NewRand: func() *rand.Rand {
			seedMu.Lock()
			defer seedMu.Unlock()
			f.seed++
			return rand.New(rand.NewSource(f.seed))
		},
	}
	f.svc = NewService(f.repo, f.guard, f.cache, f.events, cfg, zap.NewNop())
	return f
}

func (f *fixture) student(username string, grade int) *models.User {
	f.t.Helper()
	g := grade
	u := &models.User{Username: username, Password: "x", Role: models.RoleStudent, Grade: &g}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) parent(username string) *models.User {
	f.t.Helper()
	u := &models.User{Username: username, Password: "x", Role: models.RoleParent}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) link(parent, student *models.User, status models.LinkStatus) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.ParentStudent{
		ParentID:  parent.ID,
		StudentID: student.ID,
		Status:    status,
	}).Error)
}

func (f *fixture) subject(name string, grade int) *models.Subject {
	f.t.Helper()
	s := &models.Subject{Name: name, Grade: grade}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f *fixture) topic(subject *models.Subject) *models.Topic {
	f.t.Helper()
	tp := &models.Topic{SubjectID: subject.ID, Name: fmt.Sprintf("%s topic", subject.Name)}
	require.NoError(f.t, f.db.Create(tp).Error)
	return tp
}

// questions creates n multiple-choice questions worth 10 points whose key is "A".
func (f *fixture) questions(topic *models.Topic, n int) []uint {
	f.t.Helper()
	ids := make([]uint, n)
	for i := 0; i < n; i++ {
		q := &models.Question{
			TopicID:   topic.ID,
			Text:      fmt.Sprintf("question %d", i+1),
			Type:      models.QuestionMultipleChoice,
			Options:   []string{"one", "two", "three", "four"},
			AnswerKey: "A",
			Points:    10,
		}
		require.NoError(f.t, f.db.Create(q).Error)
		ids[i] = q.ID
	}
	return ids
}

func intPtr(n int) *int { return &n }

func (f *fixture) customQuiz(author *models.User, subject *models.Subject, candidates []uint, count *int) *models.Quiz {
	f.t.Helper()
	quiz, err := f.svc.CreateQuiz(f.ctx, Actor{ID: author.ID, Role: author.Role}, QuizInput{
		Title:         "Custom quiz",
		SubjectID:     subject.ID,
		Grade:         subject.Grade,
		Kind:          models.QuizCustom,
		QuestionCount: count,
		CandidateIDs:  candidates,
	})
	require.NoError(f.t, err)
	return quiz
}

func (f *fixture) subjectQuiz(author *models.User, subject *models.Subject, count int) *models.Quiz {
	f.t.Helper()
	quiz, err := f.svc.CreateQuiz(f.ctx, Actor{ID: author.ID, Role: author.Role}, QuizInput{
		Title:         "Subject quiz",
		SubjectID:     subject.ID,
		Grade:         subject.Grade,
		Kind:          models.QuizSubjectBased,
		QuestionCount: intPtr(count),
	})
	require.NoError(f.t, err)
	return quiz
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func questionIDs(view *SessionView) []uint {
	ids := make([]uint, len(view.Questions))
	for i, q := range view.Questions {
		ids[i] = q.ID
	}
	return ids
}

func sorted(ids []uint) []uint {
	out := append([]uint(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f *fixture) countSessions(studentID, quizID uint) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(&models.QuizSession{}).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Count(&n).Error)
	return n
}

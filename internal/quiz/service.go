// internal/quiz/service.go
package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/models"
	"github.com/kaqfa/student-space/pkg/monitoring"
)

// Cache holds quiz templates and per-quiz leaderboards.
type Cache interface {
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	InvalidateQuiz(ctx context.Context, id uint) error
	SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error
	GetLeaderboard(ctx context.Context, quizID uint, limit int) ([]models.LeaderboardEntry, error)
}

// Publisher fans engine events out to live watchers.
type Publisher interface {
	Publish(room, eventType string, data interface{})
}

const (
	EventAnswerSaved     = "answer_saved"
	EventSessionFinished = "session_finished"
)

func StudentRoom(studentID uint) string {
	return fmt.Sprintf("student:%d", studentID)
}

type EngineConfig struct {
	Clock func() time.Time
	// NewRand is called once per session creation.
	NewRand func() *rand.Rand
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Clock: time.Now,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type Service struct {
	repo   *Repository
	guard  *Guard
	cache  Cache
	events Publisher
	cfg    EngineConfig
	log    *zap.Logger
}

func NewService(repo *Repository, guard *Guard, cache Cache, events Publisher, cfg EngineConfig, log *zap.Logger) *Service {
	def := DefaultEngineConfig()
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	if cfg.NewRand == nil {
		cfg.NewRand = def.NewRand
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		guard:  guard,
		cache:  cache,
		events: events,
		cfg:    cfg,
		log:    log,
	}
}

type SessionView struct {
	Session          models.QuizSession   `json:"session"`
	QuizTitle        string               `json:"quiz_title"`
	Questions        []models.QuestionDTO `json:"questions"`
	Answers          map[uint]string      `json:"answers"`
	RemainingSeconds *int                 `json:"remaining_seconds,omitempty"`
}

type AttemptResult struct {
	Question models.QuestionDTO `json:"question"`
	Attempt  models.Attempt     `json:"attempt"`
}

type Result struct {
	Session      models.QuizSession `json:"session"`
	EarnedPoints int                `json:"earned_points"`
	MaxPoints    int                `json:"max_points"`
	Attempts     []AttemptResult    `json:"attempts"`
}

func (s *Service) now() time.Time { return s.cfg.Clock() }

func (s *Service) expired(session *models.QuizSession, quiz *models.Quiz) bool {
	if quiz.TimeLimitMinutes <= 0 || session.IsCompleted() {
		return false
	}
	return !s.now().Before(session.StartedAt.Add(quiz.TimeLimit()))
}

func (s *Service) publish(studentID uint, eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(StudentRoom(studentID), eventType, data)
}

func (s *Service) loadQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	if s.cache != nil {
		if quiz, err := s.cache.GetQuiz(ctx, id); err == nil {
			return quiz, nil
		}
	}

	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", id, err)
	}

	if s.cache != nil {
		if err := s.cache.SetQuiz(ctx, quiz); err != nil {
			s.log.Warn("cache quiz", zap.Uint("quiz_id", id), zap.Error(err))
		}
	}
	return quiz, nil
}

func (s *Service) loadStudent(ctx context.Context, id uint) (*models.User, error) {
	student, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("student %d: %w", id, err)
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return student, nil
}

// authorizeRead also lets admins read any student's results.
func (s *Service) authorizeRead(ctx context.Context, actor Actor, studentID uint) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	return s.guard.authorize(ctx, actor, studentID)
}

// StartOrResumeSession returns the open session for (student, quiz), creating
// and populating one if none exists.
func (s *Service) StartOrResumeSession(ctx context.Context, actor Actor, studentID, quizID uint) (*SessionView, error) {
	if err := s.guard.authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTemplate(quiz.Kind, quiz.QuestionCount, quiz.CandidateIDs); err != nil {
		return nil, err
	}

	proxy := actor.ID != studentID
	var (
		session *models.QuizSession
		created bool
	)
	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		open, err := tx.FindOpenSession(ctx, studentID, quizID)
		if err != nil {
			return err
		}

		if open == nil {
			fresh := &models.QuizSession{
				StudentID:   studentID,
				QuizID:      quizID,
				Grade:       quiz.Grade,
				StartedAt:   s.now(),
				IsProxyMode: proxy,
			}
			if student.Grade != nil {
				fresh.Grade = *student.Grade
			}
			if proxy {
				proxyID := actor.ID
				fresh.ProxyUserID = &proxyID
			}

			created, err = tx.InsertSession(ctx, fresh)
			if err != nil {
				return err
			}
			if created {
				session = fresh
				return s.populate(ctx, tx, fresh, quiz)
			}

			// Lost the race to a concurrent start; resume the winner's session.
			open, err = tx.FindOpenSession(ctx, studentID, quizID)
			if err != nil {
				return err
			}
			if open == nil {
				return fmt.Errorf("open session for student %d quiz %d vanished", studentID, quizID)
			}
		}

		if proxy && !open.IsProxyMode {
			if err := tx.PromoteProxy(ctx, open.ID, actor.ID); err != nil {
				return err
			}
			proxyID := actor.ID
			open.IsProxyMode = true
			open.ProxyUserID = &proxyID
		}
		session = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		mode := "direct"
		if proxy {
			mode = "proxy"
		}
		monitoring.SessionsStarted.WithLabelValues(mode).Inc()
		s.log.Info("session started",
			zap.Uint("session_id", session.ID),
			zap.Uint("student_id", studentID),
			zap.Uint("quiz_id", quizID),
			zap.Bool("proxy", proxy),
		)
	}

	if s.expired(session, quiz) {
		session, err = s.finalize(ctx, session, quiz, nil)
		if err != nil {
			return nil, err
		}
	}

	return s.buildView(ctx, session, quiz)
}

// populate draws the committed question set once and creates empty answer slots.
func (s *Service) populate(ctx context.Context, tx *Repository, session *models.QuizSession, quiz *models.Quiz) error {
	existing, err := tx.CountSessionQuestions(ctx, session.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	var (
		pool []uint
		n    int
	)
	switch quiz.Kind {
	case models.QuizSubjectBased:
		pool, err = tx.SubjectPool(ctx, quiz.SubjectID, quiz.Grade)
		n = *quiz.QuestionCount
	case models.QuizCustom:
		pool, err = tx.CuratedIDs(ctx, quiz.ID)
		if quiz.QuestionCount != nil {
			n = *quiz.QuestionCount
		}
	}
	if err != nil {
		return err
	}

	if len(pool) == 0 {
		s.log.Warn("empty question pool",
			zap.Uint("session_id", session.ID),
			zap.Uint("quiz_id", quiz.ID),
			zap.Error(ErrEmptyPool),
		)
		return nil
	}

	ids := Draw(pool, n, s.cfg.NewRand())
	if err := tx.AddSessionQuestions(ctx, session.ID, ids); err != nil {
		return err
	}
	return tx.EnsureAttempts(ctx, session.StudentID, session.ID, ids)
}

// SubmitAnswer records or overwrites the answer to one committed question.
func (s *Service) SubmitAnswer(ctx context.Context, actor Actor, sessionID, questionID uint, answer string, timeTaken int) (*models.Attempt, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	if err := s.guard.authorize(ctx, actor, session.StudentID); err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, ErrSessionClosed
	}

	quiz, err := s.loadQuiz(ctx, session.QuizID)
	if err != nil {
		return nil, err
	}
	if s.expired(session, quiz) {
		if _, err := s.finalize(ctx, session, quiz, nil); err != nil {
			return nil, err
		}
		return nil, ErrSessionClosed
	}

	ok, err := s.repo.SessionHasQuestion(ctx, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("answer for question outside session",
			zap.Uint("session_id", sessionID),
			zap.Uint("question_id", questionID),
			zap.Uint("actor_id", actor.ID),
		)
		return nil, ErrQuestionNotInSession
	}

	question, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", questionID, err)
	}

	var attempt *models.Attempt
	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		current, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if current.IsCompleted() {
			return ErrSessionClosed
		}

		attempt, err = tx.FindOrCreateAttempt(ctx, session.StudentID, questionID, sessionID)
		if err != nil {
			return err
		}
		Grade(attempt, question, NormalizeAnswer(answer))
		if timeTaken > 0 {
			attempt.TimeTaken = timeTaken
		}
		return tx.SaveAttempt(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	monitoring.AnswersRecorded.Inc()
	s.publish(session.StudentID, EventAnswerSaved, map[string]interface{}{
		"session_id":  sessionID,
		"question_id": questionID,
		"answered":    attempt.AnswerGiven != "",
		"proxy":       actor.ID != session.StudentID,
	})
	return attempt, nil
}

// FinishSession closes a session, optionally applying a final batch of answers first.
// Finishing an already completed session returns the stored result.
func (s *Service) FinishSession(ctx context.Context, actor Actor, sessionID uint, answers map[uint]string) (*models.QuizSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	if err := s.guard.authorize(ctx, actor, session.StudentID); err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return session, nil
	}

	quiz, err := s.loadQuiz(ctx, session.QuizID)
	if err != nil {
		return nil, err
	}
	if s.expired(session, quiz) {
		answers = nil
	}

	for questionID := range answers {
		ok, err := s.repo.SessionHasQuestion(ctx, sessionID, questionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("question %d: %w", questionID, ErrQuestionNotInSession)
		}
	}

	return s.finalize(ctx, session, quiz, answers)
}

// finalize is the single open -> completed transition.
func (s *Service) finalize(ctx context.Context, session *models.QuizSession, quiz *models.Quiz, answers map[uint]string) (*models.QuizSession, error) {
	var (
		result    *models.QuizSession
		completed bool
	)
	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		current, err := tx.GetSession(ctx, session.ID)
		if err != nil {
			return err
		}
		if current.IsCompleted() {
			result = current
			return nil
		}

		if len(answers) > 0 {
			ids := make([]uint, 0, len(answers))
			for id := range answers {
				ids = append(ids, id)
			}
			questions, err := tx.GetQuestions(ctx, ids)
			if err != nil {
				return err
			}
			for id, raw := range answers {
				question, ok := questions[id]
				if !ok {
					return fmt.Errorf("question %d: %w", id, ErrNotFound)
				}
				attempt, err := tx.FindOrCreateAttempt(ctx, current.StudentID, id, current.ID)
				if err != nil {
					return err
				}
				Grade(attempt, question, NormalizeAnswer(raw))
				if err := tx.SaveAttempt(ctx, attempt); err != nil {
					return err
				}
			}
		}

		earned, err := tx.SessionEarnedPoints(ctx, current.ID)
		if err != nil {
			return err
		}
		maxPoints, err := tx.SessionMaxPoints(ctx, current.ID)
		if err != nil {
			return err
		}
		score := ScorePercent(earned, maxPoints)
		passed := score >= float64(quiz.PassingScore)
		at := s.now()

		completed, err = tx.CompleteSession(ctx, current.ID, score, passed, at)
		if err != nil {
			return err
		}
		if !completed {
			result, err = tx.GetSession(ctx, current.ID)
			return err
		}

		current.Score = score
		current.Passed = passed
		current.CompletedAt = &at
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		monitoring.SessionsFinished.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()
		s.log.Info("session finished",
			zap.Uint("session_id", result.ID),
			zap.Uint("student_id", result.StudentID),
			zap.Float64("score", result.Score),
			zap.Bool("passed", result.Passed),
		)
		s.publish(result.StudentID, EventSessionFinished, map[string]interface{}{
			"session_id": result.ID,
			"quiz_id":    result.QuizID,
			"score":      result.Score,
			"passed":     result.Passed,
		})
		s.refreshLeaderboard(ctx, result.QuizID)
	}
	return result, nil
}

// GetResult returns a session with its per-question attempts. Answer keys,
// correctness and points are revealed only once the session is completed.
func (s *Service) GetResult(ctx context.Context, actor Actor, sessionID uint) (*Result, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	if err := s.authorizeRead(ctx, actor, session.StudentID); err != nil {
		return nil, err
	}
	return s.buildResult(ctx, session)
}

// LatestResult returns the most recent completed session of a student on a quiz.
func (s *Service) LatestResult(ctx context.Context, actor Actor, quizID, studentID uint) (*Result, error) {
	if err := s.authorizeRead(ctx, actor, studentID); err != nil {
		return nil, err
	}
	session, err := s.repo.LatestCompletedSession(ctx, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("result for quiz %d: %w", quizID, err)
	}
	return s.buildResult(ctx, session)
}

func (s *Service) buildResult(ctx context.Context, session *models.QuizSession) (*Result, error) {
	ids, err := s.repo.SessionQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.GetQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.SessionAttempts(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uint]models.Attempt, len(attempts))
	for _, a := range attempts {
		byQuestion[a.QuestionID] = a
	}

	reveal := session.IsCompleted()
	res := &Result{Session: *session, Attempts: make([]AttemptResult, 0, len(ids))}
	for _, id := range ids {
		q, ok := questions[id]
		if !ok {
			continue
		}
		a := byQuestion[id]
		if reveal {
			res.EarnedPoints += a.PointsEarned
		} else {
			a.IsCorrect = false
			a.PointsEarned = 0
		}
		res.MaxPoints += q.Points
		res.Attempts = append(res.Attempts, AttemptResult{
			Question: q.ToDTO(reveal),
			Attempt:  a,
		})
	}
	return res, nil
}

func (s *Service) buildView(ctx context.Context, session *models.QuizSession, quiz *models.Quiz) (*SessionView, error) {
	res, err := s.buildResult(ctx, session)
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		Session:   *session,
		QuizTitle: quiz.Title,
		Questions: make([]models.QuestionDTO, 0, len(res.Attempts)),
		Answers:   make(map[uint]string, len(res.Attempts)),
	}
	for _, ar := range res.Attempts {
		view.Questions = append(view.Questions, ar.Question)
		view.Answers[ar.Question.ID] = ar.Attempt.AnswerGiven
	}

	if quiz.TimeLimitMinutes > 0 && !session.IsCompleted() {
		remaining := int(session.StartedAt.Add(quiz.TimeLimit()).Sub(s.now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingSeconds = &remaining
	}
	return view, nil
}

// RecordPractice stores a standalone attempt outside any session.
func (s *Service) RecordPractice(ctx context.Context, actor Actor, studentID, questionID uint, answer string, timeTaken int) (*models.Attempt, error) {
	if err := s.guard.authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}
	question, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", questionID, err)
	}

	attempt := &models.Attempt{
		StudentID:  studentID,
		QuestionID: questionID,
		TimeTaken:  timeTaken,
	}
	Grade(attempt, question, NormalizeAnswer(answer))
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// CreateQuiz validates and stores a new template authored by a parent or admin.
func (s *Service) CreateQuiz(ctx context.Context, author Actor, in QuizInput) (*models.Quiz, error) {
	if author.Role != models.RoleParent && author.Role != models.RoleAdmin {
		return nil, ErrAuthorization
	}
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{CreatorID: author.ID, IsActive: true, PassingScore: models.DefaultPassingScore}
	applyInput(quiz, &in)

	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	s.log.Info("quiz created", zap.Uint("quiz_id", quiz.ID), zap.Uint("creator_id", author.ID), zap.String("kind", string(quiz.Kind)))

	return s.repo.GetQuiz(ctx, quiz.ID)
}

// UpdateQuiz edits a template. Only its creator or an admin may do so.
func (s *Service) UpdateQuiz(ctx context.Context, author Actor, quizID uint, in QuizInput) (*models.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", quizID, err)
	}
	if author.Role != models.RoleAdmin && quiz.CreatorID != author.ID {
		return nil, ErrAuthorization
	}
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}

	applyInput(quiz, &in)
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateQuiz(ctx, quizID); err != nil {
			s.log.Warn("invalidate quiz cache", zap.Uint("quiz_id", quizID), zap.Error(err))
		}
	}
	return s.repo.GetQuiz(ctx, quizID)
}

func (s *Service) checkInput(ctx context.Context, in *QuizInput) error {
	in.CandidateIDs = unique(in.CandidateIDs)
	if err := validateInput(in); err != nil {
		return err
	}

	ok, err := s.repo.SubjectExists(ctx, in.SubjectID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("subject %d: %w", in.SubjectID, ErrNotFound)
	}

	found, err := s.repo.CountQuestions(ctx, in.CandidateIDs)
	if err != nil {
		return err
	}
	if int(found) != len(in.CandidateIDs) {
		return configErr("candidate_ids", "references unknown questions")
	}
	return nil
}

func applyInput(quiz *models.Quiz, in *QuizInput) {
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.SubjectID = in.SubjectID
	quiz.Grade = in.Grade
	quiz.Kind = in.Kind
	quiz.QuestionCount = in.QuestionCount
	quiz.TimeLimitMinutes = in.TimeLimitMinutes
	quiz.CandidateIDs = in.CandidateIDs
	if in.PassingScore != nil {
		quiz.PassingScore = *in.PassingScore
	}
	if in.IsActive != nil {
		quiz.IsActive = *in.IsActive
	}
}

func (s *Service) ListMyQuizzes(ctx context.Context, author Actor) ([]models.Quiz, error) {
	return s.repo.ListQuizzesByCreator(ctx, author.ID)
}

// ListAvailableQuizzes lists active quizzes matching the student's grade.
func (s *Service) ListAvailableQuizzes(ctx context.Context, actor Actor, studentID uint) ([]models.Quiz, error) {
	if err := s.guard.authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Grade == nil {
		return []models.Quiz{}, nil
	}
	return s.repo.ListActiveQuizzes(ctx, *student.Grade)
}

// Leaderboard serves best scores from the cache, falling back to the database.
func (s *Service) Leaderboard(ctx context.Context, quizID uint, limit int) ([]models.LeaderboardEntry, error) {
	if s.cache != nil {
		entries, err := s.cache.GetLeaderboard(ctx, quizID, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.log.Warn("read leaderboard cache", zap.Uint("quiz_id", quizID), zap.Error(err))
		}
	}

	entries, err := s.repo.Leaderboard(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(entries) > 0 {
		if err := s.cache.SetLeaderboard(ctx, quizID, entries); err != nil {
			s.log.Warn("write leaderboard cache", zap.Uint("quiz_id", quizID), zap.Error(err))
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) refreshLeaderboard(ctx context.Context, quizID uint) {
	if s.cache == nil {
		return
	}
	entries, err := s.repo.Leaderboard(ctx, quizID)
	if err != nil {
		s.log.Warn("rebuild leaderboard", zap.Uint("quiz_id", quizID), zap.Error(err))
		return
	}
	if err := s.cache.SetLeaderboard(ctx, quizID, entries); err != nil {
		s.log.Warn("write leaderboard cache", zap.Uint("quiz_id", quizID), zap.Error(err))
	}
}

// ExpireOverdueSessions finalizes open timed sessions whose limit has passed.
// Untimed sessions are left open.
func (s *Service) ExpireOverdueSessions(ctx context.Context) (int, error) {
	sessions, err := s.repo.OpenTimedSessions(ctx)
	if err != nil {
		return 0, err
	}

	quizzes := make(map[uint]*models.Quiz)
	expired := 0
	for i := range sessions {
		session := &sessions[i]
		quiz, ok := quizzes[session.QuizID]
		if !ok {
			quiz, err = s.loadQuiz(ctx, session.QuizID)
			if err != nil {
				s.log.Error("load quiz for sweep", zap.Uint("quiz_id", session.QuizID), zap.Error(err))
				continue
			}
			quizzes[session.QuizID] = quiz
		}
		if !s.expired(session, quiz) {
			continue
		}
		if _, err := s.finalize(ctx, session, quiz, nil); err != nil {
			s.log.Error("finalize overdue session", zap.Uint("session_id", session.ID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

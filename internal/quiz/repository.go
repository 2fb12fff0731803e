// internal/quiz/repository.go
package quiz

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaqfa/student-space/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single database transaction.
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

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) SubjectExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CountQuestions(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// GetQuiz loads a quiz with its curated candidates and their point total.
func (r *Repository) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, notFound(err)
	}

	ids, err := r.CuratedIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.CandidateIDs = ids

	if len(ids) > 0 {
		var total int64
		err := r.db.WithContext(ctx).Model(&models.Question{}).
			Select("COALESCE(SUM(points), 0)").
			Where("id IN ?", ids).
			Scan(&total).Error
		if err != nil {
			return nil, err
		}
		quiz.CandidatePoints = int(total)
	}
	return &quiz, nil
}

func (r *Repository) CuratedIDs(ctx context.Context, quizID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", quizID).
		Order("question_id").
		Pluck("question_id", &ids).Error
	return ids, err
}

func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.WithContext(ctx).Create(quiz).Error; err != nil {
			return err
		}
		return tx.replaceCandidates(ctx, quiz.ID, quiz.CandidateIDs)
	})
}

func (r *Repository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.WithContext(ctx).Save(quiz).Error; err != nil {
			return err
		}
		return tx.replaceCandidates(ctx, quiz.ID, quiz.CandidateIDs)
	})
}

func (r *Repository) replaceCandidates(ctx context.Context, quizID uint, ids []uint) error {
	if err := r.db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.QuizQuestion, len(ids))
	for i, id := range ids {
		rows[i] = models.QuizQuestion{QuizID: quizID, QuestionID: id}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *Repository) ListQuizzesByCreator(ctx context.Context, creatorID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *Repository) ListActiveQuizzes(ctx context.Context, grade int) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).
		Where("grade = ? AND is_active = ?", grade, true).
		Order("created_at desc").
		Find(&quizzes).Error
	return quizzes, err
}

// SubjectPool returns ids of questions whose topic belongs to the subject at the given grade.
func (r *Repository) SubjectPool(ctx context.Context, subjectID uint, grade int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Joins("JOIN topics ON topics.id = questions.topic_id").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("subjects.id = ? AND subjects.grade = ?", subjectID, grade).
		Pluck("questions.id", &ids).Error
	return ids, err
}

func (r *Repository) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

func (r *Repository) GetQuestions(ctx context.Context, ids []uint) (map[uint]*models.Question, error) {
	out := make(map[uint]*models.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []models.Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for i := range questions {
		out[questions[i].ID] = &questions[i]
	}
	return out, nil
}

func (r *Repository) GetSession(ctx context.Context, id uint) (*models.QuizSession, error) {
	var session models.QuizSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// FindOpenSession returns nil when the pair has no open session.
func (r *Repository) FindOpenSession(ctx context.Context, studentID, quizID uint) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ? AND completed_at IS NULL", studentID, quizID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// InsertSession reports false when another open session for the pair already exists.
func (r *Repository) InsertSession(ctx context.Context, session *models.QuizSession) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(session)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PromoteProxy marks a direct session as proxy. Proxy sessions are never demoted.
func (r *Repository) PromoteProxy(ctx context.Context, sessionID, proxyUserID uint) error {
	return r.db.WithContext(ctx).Model(&models.QuizSession{}).
		Where("id = ? AND is_proxy_mode = ?", sessionID, false).
		Updates(map[string]interface{}{
			"is_proxy_mode": true,
			"proxy_user_id": proxyUserID,
		}).Error
}

// CompleteSession sets the terminal fields once. It reports false if the session was already completed.
func (r *Repository) CompleteSession(ctx context.Context, sessionID uint, score float64, passed bool, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.QuizSession{}).
		Where("id = ? AND completed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"score":        score,
			"passed":       passed,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) LatestCompletedSession(ctx context.Context, studentID, quizID uint) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ? AND completed_at IS NOT NULL", studentID, quizID).
		Order("completed_at desc").
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (r *Repository) OpenTimedSessions(ctx context.Context) ([]models.QuizSession, error) {
	var sessions []models.QuizSession
	err := r.db.WithContext(ctx).
		Joins("JOIN quizzes ON quizzes.id = quiz_sessions.quiz_id").
		Where("quiz_sessions.completed_at IS NULL AND quizzes.time_limit_minutes > 0").
		Find(&sessions).Error
	return sessions, err
}

func (r *Repository) CountSessionQuestions(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SessionQuestion{}).
		Where("quiz_session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// SessionQuestionIDs returns the committed set in draw order.
func (r *Repository) SessionQuestionIDs(ctx context.Context, sessionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SessionQuestion{}).
		Where("quiz_session_id = ?", sessionID).
		Order("position").
		Pluck("question_id", &ids).Error
	return ids, err
}

func (r *Repository) SessionHasQuestion(ctx context.Context, sessionID, questionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SessionQuestion{}).
		Where("quiz_session_id = ? AND question_id = ?", sessionID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) AddSessionQuestions(ctx context.Context, sessionID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.SessionQuestion, len(ids))
	for i, id := range ids {
		rows[i] = models.SessionQuestion{QuizSessionID: sessionID, QuestionID: id, Position: i}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// EnsureAttempts creates empty answer slots, leaving existing ones untouched.
func (r *Repository) EnsureAttempts(ctx context.Context, studentID, sessionID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	rows := make([]models.Attempt, len(questionIDs))
	for i, qid := range questionIDs {
		sid := sessionID
		rows[i] = models.Attempt{StudentID: studentID, QuestionID: qid, QuizSessionID: &sid}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// FindOrCreateAttempt returns the single attempt row for (student, question, session).
func (r *Repository) FindOrCreateAttempt(ctx context.Context, studentID, questionID, sessionID uint) (*models.Attempt, error) {
	sid := sessionID
	fresh := models.Attempt{StudentID: studentID, QuestionID: questionID, QuizSessionID: &sid}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var attempt models.Attempt
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND question_id = ? AND quiz_session_id = ?", studentID, questionID, sessionID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *Repository) SaveAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

func (r *Repository) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *Repository) SessionAttempts(ctx context.Context, sessionID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := r.db.WithContext(ctx).Where("quiz_session_id = ?", sessionID).Order("id").Find(&attempts).Error
	return attempts, err
}

func (r *Repository) SessionEarnedPoints(ctx context.Context, sessionID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Attempt{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("quiz_session_id = ?", sessionID).
		Scan(&total).Error
	return int(total), err
}

// SessionMaxPoints sums the points of the committed questions.
func (r *Repository) SessionMaxPoints(ctx context.Context, sessionID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.SessionQuestion{}).
		Select("COALESCE(SUM(questions.points), 0)").
		Joins("JOIN questions ON questions.id = session_questions.question_id").
		Where("session_questions.quiz_session_id = ?", sessionID).
		Scan(&total).Error
	return int(total), err
}

// Leaderboard returns each student's best completed score for a quiz. Ties are
// ordered by username descending, the order a redis sorted set reads them back.
func (r *Repository) Leaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.username, MAX(s.score) AS best_score
		FROM quiz_sessions s
		JOIN users u ON u.id = s.student_id
		WHERE s.quiz_id = ? AND s.completed_at IS NOT NULL
		GROUP BY u.username
		ORDER BY best_score DESC, u.username DESC
	`, quizID).Scan(&entries).Error
	return entries, err
}

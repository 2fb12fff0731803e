// internal/models/quiz.go
package models

import (
	"time"
)

type QuizKind string

const (
	QuizSubjectBased QuizKind = "subject_based"
	QuizCustom       QuizKind = "custom"
)

// EstimatedPointsPerQuestion is used for subject quizzes, whose questions are
// only known once a session draws them.
const EstimatedPointsPerQuestion = 10

const DefaultPassingScore = 70

type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	SubjectID   uint      `json:"subject_id" gorm:"index;not null"`
	Grade       int       `json:"grade" gorm:"index;not null"`
	Kind        QuizKind  `json:"kind" gorm:"type:varchar(20);not null;default:custom"`
	// QuestionCount is how many questions a session draws. Required for
	// subject quizzes; optional for custom ones (nil means all candidates).
	QuestionCount    *int `json:"question_count,omitempty"`
	TimeLimitMinutes int  `json:"time_limit_minutes" gorm:"not null;default:0"`
	PassingScore     int  `json:"passing_score" gorm:"not null"`
	CreatorID        uint `json:"creator_id" gorm:"index"`
	IsActive         bool `json:"is_active" gorm:"not null"`

	// CandidateIDs is the curated question set of a custom quiz, stored in quiz_questions.
	CandidateIDs []uint `json:"candidate_ids,omitempty" gorm:"-"`
	// CandidatePoints is the exact point total of the curated set.
	CandidatePoints int `json:"-" gorm:"-"`
}

// TotalPoints is exact for custom quizzes and an estimate for subject quizzes.
func (q *Quiz) TotalPoints() int {
	if q.Kind == QuizSubjectBased {
		return q.DrawCount() * EstimatedPointsPerQuestion
	}
	return q.CandidatePoints
}

func (q *Quiz) DrawCount() int {
	if q.Kind == QuizSubjectBased {
		if q.QuestionCount == nil {
			return 0
		}
		return *q.QuestionCount
	}
	if q.QuestionCount != nil {
		return *q.QuestionCount
	}
	return len(q.CandidateIDs)
}

func (q *Quiz) TimeLimit() time.Duration {
	return time.Duration(q.TimeLimitMinutes) * time.Minute
}

// QuizQuestion is one curated candidate of a custom quiz.
type QuizQuestion struct {
	QuizID     uint `gorm:"primaryKey"`
	QuestionID uint `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}

type QuizSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// At most one open session per (student, quiz).
	StudentID   uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_open_session,where:completed_at IS NULL;index:idx_session_student_completed"`
	QuizID      uint       `json:"quiz_id" gorm:"not null;uniqueIndex:idx_open_session,where:completed_at IS NULL"`
	Grade       int        `json:"grade" gorm:"index;not null"`
	Score       float64    `json:"score" gorm:"not null;default:0"`
	Passed      bool       `json:"passed" gorm:"not null;default:false"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"index:idx_session_student_completed"`
	IsProxyMode bool       `json:"is_proxy_mode" gorm:"not null;default:false"`
	ProxyUserID *uint      `json:"proxy_user_id,omitempty"`
}

func (s *QuizSession) IsCompleted() bool { return s.CompletedAt != nil }

// SessionQuestion is one committed question of a session. Position keeps the draw order.
type SessionQuestion struct {
	QuizSessionID uint `gorm:"primaryKey"`
	QuestionID    uint `gorm:"primaryKey;index"`
	Position      int  `gorm:"not null"`
}

// Attempt is a student's answer to one question. A nil QuizSessionID means practice.
type Attempt struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
	StudentID     uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_attempt_slot;index:idx_attempt_student_created"`
	QuestionID    uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_slot"`
	QuizSessionID *uint     `json:"quiz_session_id,omitempty" gorm:"uniqueIndex:idx_attempt_slot;index"`
	AnswerGiven   string    `json:"answer_given" gorm:"not null;default:''"`
	IsCorrect     bool      `json:"is_correct" gorm:"not null;default:false;index"`
	PointsEarned  int       `json:"points_earned" gorm:"not null;default:0"`
	// TimeTaken is in seconds.
	TimeTaken int `json:"time_taken" gorm:"not null;default:0"`
}

type LeaderboardEntry struct {
	Username  string  `json:"username"`
	BestScore float64 `json:"best_score"`
}

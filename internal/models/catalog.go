// internal/models/catalog.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_subject_name_grade"`
	Grade     int       `json:"grade" gorm:"not null;uniqueIndex:idx_subject_name_grade;index"`
	Order     int       `json:"order"`
}

type Topic struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SubjectID   uint      `json:"subject_id" gorm:"index;not null"`
	Subject     *Subject  `json:"subject,omitempty"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionEssay          QuestionType = "essay"
	QuestionFillBlank      QuestionType = "fill_blank"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	DefaultQuestionPoints        = 10
	DefaultQuestionEstimatedTime = 60
)

type Question struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	TopicID     uint                        `json:"topic_id" gorm:"index;not null"`
	Topic       *Topic                      `json:"topic,omitempty"`
	Text        string                      `json:"text" gorm:"not null"`
	Type        QuestionType                `json:"type" gorm:"type:varchar(20);index;not null"`
	Difficulty  Difficulty                  `json:"difficulty" gorm:"type:varchar(20)"`
	Options     datatypes.JSONSlice[string] `json:"options,omitempty"`
	AnswerKey   string                      `json:"answer_key" gorm:"not null"`
	Explanation string                      `json:"explanation"`
	Points      int                         `json:"points" gorm:"not null;default:10"`
	// EstimatedTime is in seconds.
	EstimatedTime int   `json:"estimated_time" gorm:"not null;default:60"`
	CreatedByID   *uint `json:"created_by_id,omitempty"`
}

func (q *Question) IsMultipleChoice() bool { return q.Type == QuestionMultipleChoice }

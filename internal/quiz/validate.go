// internal/quiz/validate.go
package quiz

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kaqfa/student-space/internal/models"
)

var validate = validator.New()

// QuizInput is the author-supplied part of a quiz template.
type QuizInput struct {
	Title            string          `json:"title" validate:"required,max=200"`
	Description      string          `json:"description"`
	SubjectID        uint            `json:"subject_id" validate:"required"`
	Grade            int             `json:"grade" validate:"min=1,max=6"`
	Kind             models.QuizKind `json:"kind" validate:"required,oneof=subject_based custom"`
	QuestionCount    *int            `json:"question_count"`
	TimeLimitMinutes int             `json:"time_limit_minutes" validate:"min=0"`
	PassingScore     *int            `json:"passing_score" validate:"omitempty,min=0,max=100"`
	IsActive         *bool           `json:"is_active"`
	CandidateIDs     []uint          `json:"candidate_ids"`
}

// ValidateTemplate checks that a template can be resolved into sessions.
func ValidateTemplate(kind models.QuizKind, questionCount *int, candidateIDs []uint) error {
	switch kind {
	case models.QuizSubjectBased:
		if questionCount == nil {
			return configErr("question_count", "required for subject-based quizzes")
		}
		if *questionCount <= 0 {
			return configErr("question_count", "must be positive")
		}
		if len(candidateIDs) > 0 {
			return configErr("candidate_ids", "subject-based quizzes draw from the subject catalog and cannot carry curated questions")
		}
	case models.QuizCustom:
		if len(candidateIDs) == 0 {
			return configErr("candidate_ids", "custom quizzes need at least one curated question")
		}
		if questionCount != nil {
			if *questionCount <= 0 {
				return configErr("question_count", "must be positive")
			}
			if *questionCount > len(unique(candidateIDs)) {
				return configErr("question_count", fmt.Sprintf("exceeds the %d curated questions", len(unique(candidateIDs))))
			}
		}
	default:
		return configErr("kind", fmt.Sprintf("unknown quiz kind %q", kind))
	}
	return nil
}

func validateInput(in *QuizInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	return ValidateTemplate(in.Kind, in.QuestionCount, in.CandidateIDs)
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// internal/catalog/validate.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaqfa/student-space/internal/models"
)

var answerLetters = []string{"A", "B", "C", "D"}

// ErrInvalidQuestion wraps every multiple-choice shape violation.
var ErrInvalidQuestion = errors.New("invalid question")

// ValidateQuestion normalizes the answer key and checks multiple-choice shape.
func ValidateQuestion(q *models.Question) error {
	q.AnswerKey = strings.ToUpper(strings.TrimSpace(q.AnswerKey))
	if !q.IsMultipleChoice() {
		return nil
	}

	if len(q.Options) < 2 {
		return fmt.Errorf("%w: multiple choice needs at least 2 options", ErrInvalidQuestion)
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidQuestion, i+1)
		}
	}

	idx := -1
	for i, letter := range answerLetters {
		if q.AnswerKey == letter {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: answer key must be one of A, B, C or D", ErrInvalidQuestion)
	}
	if idx >= len(q.Options) {
		return fmt.Errorf("%w: answer key %s has no matching option", ErrInvalidQuestion, q.AnswerKey)
	}
	return nil
}

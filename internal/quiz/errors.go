// internal/quiz/errors.go
package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrAuthorization        = errors.New("actor may not act for this student")
	ErrSessionClosed        = errors.New("quiz already submitted")
	ErrQuestionNotInSession = errors.New("question is not part of this session")
	ErrNotFound             = errors.New("not found")
	// ErrEmptyPool is soft: the session is still created, with no questions.
	ErrEmptyPool = errors.New("no candidate questions for quiz")
)

// ConfigurationError reports a quiz template that cannot be resolved into sessions.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid quiz configuration: %s: %s", e.Field, e.Reason)
}

func configErr(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// internal/models/dto.go
package models

type QuestionDTO struct {
	ID            uint         `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Difficulty    Difficulty   `json:"difficulty,omitempty"`
	Options       []string     `json:"options,omitempty"`
	Points        int          `json:"points"`
	EstimatedTime int          `json:"estimated_time"`
	AnswerKey     string       `json:"answer_key,omitempty"`   // Only once revealed
	Explanation   string       `json:"explanation,omitempty"` // Only once revealed
}

// ToDTO hides the answer key and explanation unless reveal is set.
func (q Question) ToDTO(reveal bool) QuestionDTO {
	dto := QuestionDTO{
		ID:            q.ID,
		Text:          q.Text,
		Type:          q.Type,
		Difficulty:    q.Difficulty,
		Options:       []string(q.Options),
		Points:        q.Points,
		EstimatedTime: q.EstimatedTime,
	}
	if dto.EstimatedTime <= 0 {
		dto.EstimatedTime = DefaultQuestionEstimatedTime
	}
	if reveal {
		dto.AnswerKey = q.AnswerKey
		dto.Explanation = q.Explanation
	}
	return dto
}

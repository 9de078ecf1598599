package questions

import (
	"strings"

	"g1-quiz-service/internal/domain"
)

// Validate accepts a record only if it has a usable id and text, a known
// section tag, all four option fields, a correct option that references
// one of them, and non-empty category and explanation.
func Validate(q domain.Question) error {
	if q.ID <= 0 {
		return &domain.ShapeError{QuestionID: q.ID, Field: "id", Reason: "must be positive"}
	}
	if strings.TrimSpace(q.Text) == "" {
		return &domain.ShapeError{QuestionID: q.ID, Field: "questionText", Reason: "is empty"}
	}
	if !q.Kind.Valid() {
		return &domain.ShapeError{QuestionID: q.ID, Field: "questionType", Reason: "must be signs or rules"}
	}
	for _, slot := range []struct {
		key  domain.OptionKey
		text string
	}{
		{domain.OptionA, q.OptionA},
		{domain.OptionB, q.OptionB},
		{domain.OptionC, q.OptionC},
		{domain.OptionD, q.OptionD},
	} {
		if strings.TrimSpace(slot.text) == "" {
			return &domain.ShapeError{QuestionID: q.ID, Field: "option_" + string(slot.key), Reason: "is empty"}
		}
	}
	if _, ok := domain.ParseOptionKey(string(q.CorrectOption)); !ok {
		return &domain.ShapeError{QuestionID: q.ID, Field: "correctOption", Reason: "must be one of a, b, c, d"}
	}
	if strings.TrimSpace(q.Category) == "" {
		return &domain.ShapeError{QuestionID: q.ID, Field: "category", Reason: "is empty"}
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return &domain.ShapeError{QuestionID: q.ID, Field: "explanation", Reason: "is empty"}
	}
	return nil
}

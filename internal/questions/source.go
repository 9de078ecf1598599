package questions

import (
	"context"
	"fmt"
	"log"

	"g1-quiz-service/internal/domain"
)

// Bank loads raw question records from a backing store (Postgres, a
// cached decorator, or an in-memory bank for tests and demos).
type Bank interface {
	QuestionsByKind(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error)
	SimulationSet(ctx context.Context) ([]domain.Question, error)
	QuestionsByID(ctx context.Context, ids []int) ([]domain.Question, error)
}

// MistakeStore tracks which questions a user has answered wrong.
type MistakeStore interface {
	Record(ctx context.Context, userID string, mistakes []domain.Mistake) error
	Clear(ctx context.Context, userID string, questionIDs []int) error
	QuestionIDs(ctx context.Context, userID string, filter domain.KindFilter) ([]int, error)
}

// Adapter is the question source: it fetches sets from the bank and
// guarantees shape correctness before anything reaches the quiz engine.
// Individually invalid records are dropped and logged; an emptied result
// escalates to an error.
type Adapter struct {
	bank     Bank
	mistakes MistakeStore
}

// NewAdapter builds the source over a bank and a mistake store.
func NewAdapter(bank Bank, mistakes MistakeStore) *Adapter {
	return &Adapter{bank: bank, mistakes: mistakes}
}

// PracticeQuestions returns a validated practice batch for one section.
// The limit is a closed enumeration; anything outside {10, 20, 40} fails
// before the bank is touched.
func (a *Adapter) PracticeQuestions(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error) {
	if !domain.ValidLimit(limit) {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidLimit, limit)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidKind, kind)
	}

	raw, err := a.bank.QuestionsByKind(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s practice questions: %w", kind, err)
	}

	valid := a.keepValid(raw, kind)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%s practice: %w", kind, domain.ErrNoQuestions)
	}
	return valid, nil
}

// SimulationQuestions returns the fixed 40-question G1 set, exactly 20
// signs and 20 rules. Any other composition from the bank is a contract
// violation reported with the expected and actual counts.
func (a *Adapter) SimulationQuestions(ctx context.Context) ([]domain.Question, error) {
	raw, err := a.bank.SimulationSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch simulation questions: %w", err)
	}

	valid := a.keepValid(raw, "")
	var signs, rules int
	for _, q := range valid {
		switch q.Kind {
		case domain.KindSigns:
			signs++
		case domain.KindRules:
			rules++
		}
	}
	if len(valid) != domain.SimulationTotal || signs != domain.SimulationSigns || rules != domain.SimulationRules {
		return nil, &domain.FormatError{GotTotal: len(valid), GotSigns: signs, GotRules: rules}
	}
	return valid, nil
}

// IncorrectQuestions returns the questions a user previously answered
// wrong, filtered by section. An empty result is a valid outcome, not an
// error: the user has nothing to review.
func (a *Adapter) IncorrectQuestions(ctx context.Context, userID string, filter domain.KindFilter) ([]domain.Question, error) {
	if userID == "" {
		return nil, domain.ErrMissingUser
	}
	if filter == "" {
		filter = domain.FilterAll
	}

	ids, err := a.mistakes.QuestionIDs(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch incorrect question ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := a.bank.QuestionsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch incorrect questions: %w", err)
	}

	valid := a.keepValid(raw, "")
	out := valid[:0]
	for _, q := range valid {
		if filter.Matches(q.Kind) {
			out = append(out, q)
		}
	}
	return out, nil
}

// RecordResult persists the wrong answers of a scored attempt so that
// incorrect-review can serve them later; questions answered correctly
// are cleared from the user's mistake list.
func (a *Adapter) RecordResult(ctx context.Context, userID string, questions []domain.Question, result domain.QuizResult) error {
	if userID == "" {
		return domain.ErrMissingUser
	}
	kinds := make(map[int]domain.Kind, len(questions))
	for _, q := range questions {
		kinds[q.ID] = q.Kind
	}

	var wrong []domain.Mistake
	var right []int
	for _, ans := range result.Answers {
		if ans.IsCorrect {
			right = append(right, ans.QuestionID)
			continue
		}
		wrong = append(wrong, domain.Mistake{QuestionID: ans.QuestionID, Kind: kinds[ans.QuestionID]})
	}

	if len(wrong) > 0 {
		if err := a.mistakes.Record(ctx, userID, wrong); err != nil {
			return fmt.Errorf("record mistakes: %w", err)
		}
	}
	if len(right) > 0 {
		if err := a.mistakes.Clear(ctx, userID, right); err != nil {
			return fmt.Errorf("clear mistakes: %w", err)
		}
	}
	return nil
}

// keepValid drops structurally invalid records and, when wantKind is
// set, records tagged with the wrong section.
func (a *Adapter) keepValid(raw []domain.Question, wantKind domain.Kind) []domain.Question {
	valid := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		if err := Validate(q); err != nil {
			log.Printf("dropping question: %v", err)
			continue
		}
		if wantKind != "" && q.Kind != wantKind {
			log.Printf("dropping question %d: expected %s record, got %s", q.ID, wantKind, q.Kind)
			continue
		}
		// normalize so downstream comparisons never see mixed case
		q.CorrectOption, _ = domain.ParseOptionKey(string(q.CorrectOption))
		valid = append(valid, q)
	}
	return valid
}

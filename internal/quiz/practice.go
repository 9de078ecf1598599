package quiz

import (
	"context"

	"g1-quiz-service/internal/domain"
)

// PracticeController runs the unlimited signs or rules practice mode
// with a user-chosen question count.
type PracticeController struct {
	controller
	source Source
	kind   domain.Kind

	limit int
}

// NewPracticeController wires a practice workflow for one section. The
// attempt is injected so its lifecycle stays with the caller.
func NewPracticeController(attempt *Attempt, source Source, kind domain.Kind, limit int) *PracticeController {
	return &PracticeController{
		controller: controller{attempt: attempt},
		source:     source,
		kind:       kind,
		limit:      limit,
	}
}

// Mode returns the base mode for the configured section.
func (c *PracticeController) Mode() domain.Mode {
	if c.kind == domain.KindRules {
		return domain.ModeRulesPractice
	}
	return domain.ModeSignsPractice
}

// Initialize resets the attempt, fetches a practice batch, and starts
// the quiz. Invalid limits fail in the adapter before any fetch.
func (c *PracticeController) Initialize(ctx context.Context) error {
	return c.load(ctx, c.Mode(), func(ctx context.Context) ([]domain.Question, error) {
		return c.source.PracticeQuestions(ctx, c.kind, c.limit)
	})
}

// LoadNewQuestions re-fetches with the same settings (or a new limit if
// one is given) without a full reset; the index rewinds to zero.
func (c *PracticeController) LoadNewQuestions(ctx context.Context, limit int) error {
	if limit > 0 {
		c.mu.Lock()
		c.limit = limit
		c.mu.Unlock()
	}
	return c.reload(ctx, func(ctx context.Context) ([]domain.Question, error) {
		return c.source.PracticeQuestions(ctx, c.kind, c.currentLimit())
	})
}

// Restart performs a full clean re-entry.
func (c *PracticeController) Restart(ctx context.Context) error {
	c.attempt.ResetQuiz()
	return c.Initialize(ctx)
}

func (c *PracticeController) currentLimit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

package quiz

import (
	"context"
	"sync"

	"g1-quiz-service/internal/domain"
)

// NoMistakesMessage is the terminal, non-error outcome of a review load
// for a user with a clean record.
const NoMistakesMessage = "No incorrect questions found"

// ReviewController re-serves only the questions a specific user
// previously answered wrong. It runs on the signs_practice base mode.
type ReviewController struct {
	controller
	source Source
	userID string
	filter domain.KindFilter

	stateMu    sync.Mutex
	noMistakes bool
}

// NewReviewController wires the incorrect-review workflow for one user.
func NewReviewController(attempt *Attempt, source Source, userID string, filter domain.KindFilter) *ReviewController {
	if filter == "" {
		filter = domain.FilterAll
	}
	return &ReviewController{
		controller: controller{attempt: attempt},
		source:     source,
		userID:     userID,
		filter:     filter,
	}
}

// Initialize fetches the user's past mistakes. A missing user id fails
// immediately, before any fetch. An empty result is success: the user
// simply has nothing to review.
func (c *ReviewController) Initialize(ctx context.Context) error {
	if c.userID == "" {
		c.attempt.SetError(domain.ErrMissingUser.Error())
		return domain.ErrMissingUser
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	c.attempt.InitializeQuiz(domain.ModeSignsPractice)

	questions, fetchErr := c.source.IncorrectQuestions(ctx, c.userID, c.filter)
	if !c.finish(gen) {
		return nil
	}
	if fetchErr != nil {
		c.attempt.SetError(fetchErr.Error())
		return fetchErr
	}

	c.stateMu.Lock()
	c.noMistakes = len(questions) == 0
	c.stateMu.Unlock()
	if len(questions) == 0 {
		return nil
	}

	c.attempt.SetQuestions(questions)
	c.attempt.StartQuiz()
	return nil
}

// Restart performs a full clean re-entry.
func (c *ReviewController) Restart(ctx context.Context) error {
	c.attempt.ResetQuiz()
	c.stateMu.Lock()
	c.noMistakes = false
	c.stateMu.Unlock()
	return c.Initialize(ctx)
}

// NoMistakes reports the clean-record terminal state, distinct from any
// fetch failure.
func (c *ReviewController) NoMistakes() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.noMistakes
}

// Message returns the user-facing text for the current review state.
func (c *ReviewController) Message() string {
	if c.NoMistakes() {
		return NoMistakesMessage
	}
	return ""
}

// SignsIncorrect returns the signs subset of the loaded review set.
func (c *ReviewController) SignsIncorrect() []domain.Question {
	return c.ofKind(domain.KindSigns)
}

// RulesIncorrect returns the rules subset of the loaded review set.
func (c *ReviewController) RulesIncorrect() []domain.Question {
	return c.ofKind(domain.KindRules)
}

func (c *ReviewController) ofKind(kind domain.Kind) []domain.Question {
	var out []domain.Question
	for _, q := range c.attempt.Questions() {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

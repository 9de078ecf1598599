package quiz

import (
	"context"
	"sync"

	"g1-quiz-service/internal/domain"
)

// Source is the slice of the question adapter the controllers consume.
type Source interface {
	PracticeQuestions(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error)
	SimulationQuestions(ctx context.Context) ([]domain.Question, error)
	IncorrectQuestions(ctx context.Context, userID string, filter domain.KindFilter) ([]domain.Question, error)
}

// controller carries the load bookkeeping shared by every mode: an
// in-flight guard so a double-clicked start cannot race itself, and a
// load generation so a fetch that resolves after a newer load (or after
// Close) is discarded instead of committed.
type controller struct {
	attempt *Attempt

	mu         sync.Mutex
	loading    bool
	generation uint64
	closed     bool
}

// Attempt exposes the underlying state store for read access.
func (c *controller) Attempt() *Attempt {
	return c.attempt
}

// Close invalidates the controller. In-flight fetches resolve into the
// void; subsequent loads fail with ErrControllerClosed.
func (c *controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

func (c *controller) begin() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, domain.ErrControllerClosed
	}
	if c.loading {
		return 0, domain.ErrLoadInProgress
	}
	c.loading = true
	c.generation++
	return c.generation, nil
}

// finish reports whether the load generation is still current. A stale
// load gives up its claim without touching the attempt.
func (c *controller) finish(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.loading = false
		return !c.closed
	}
	return false
}

// load runs the common initialize workflow: reset the attempt into the
// mode, fetch, then commit and start. A fetch failure is surfaced through
// the attempt's error state and the status stays idle.
func (c *controller) load(ctx context.Context, mode domain.Mode, fetch func(context.Context) ([]domain.Question, error)) error {
	gen, err := c.begin()
	if err != nil {
		return err
	}
	c.attempt.InitializeQuiz(mode)

	questions, fetchErr := fetch(ctx)
	if !c.finish(gen) {
		return nil
	}
	if fetchErr != nil {
		c.attempt.SetError(fetchErr.Error())
		return fetchErr
	}
	c.attempt.SetQuestions(questions)
	c.attempt.StartQuiz()
	return nil
}

// reload swaps in a fresh question batch without a full reset: the index
// rewinds to zero, the mode is preserved, and the attempt resumes active.
func (c *controller) reload(ctx context.Context, fetch func(context.Context) ([]domain.Question, error)) error {
	gen, err := c.begin()
	if err != nil {
		return err
	}
	questions, fetchErr := fetch(ctx)
	if !c.finish(gen) {
		return nil
	}
	if fetchErr != nil {
		c.attempt.SetError(fetchErr.Error())
		return fetchErr
	}
	c.attempt.ClearError()
	c.attempt.SetQuestions(questions)
	c.attempt.StartQuiz()
	return nil
}

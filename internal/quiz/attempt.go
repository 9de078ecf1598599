package quiz

import (
	"sync"
	"time"

	"g1-quiz-service/internal/domain"
)

// Snapshot is a read-only projection of one attempt, emitted to
// subscribers after every mutating action.
type Snapshot struct {
	Mode               domain.Mode              `json:"mode"`
	Status             domain.Status            `json:"status"`
	Questions          []domain.Question        `json:"questions"`
	CurrentIndex       int                      `json:"currentQuestionIndex"`
	CurrentQuestion    *domain.Question         `json:"currentQuestion,omitempty"`
	TotalQuestions     int                      `json:"totalQuestions"`
	Answered           int                      `json:"answeredCount"`
	ProgressPercentage float64                  `json:"progressPercentage"`
	CanSubmit          bool                     `json:"canSubmit"`
	CanGoNext          bool                     `json:"canGoNext"`
	CanGoPrevious      bool                     `json:"canGoPrevious"`
	Err                string                   `json:"error,omitempty"`
	Result             *domain.QuizResult       `json:"result,omitempty"`
	Answers            map[int]domain.UserAnswer `json:"userAnswers"`
}

// Attempt is the single source of truth for one in-progress quiz. All
// mutation goes through its methods; none of them panic or return
// errors. Invalid navigation clamps and failures are recorded as state.
type Attempt struct {
	mu     sync.RWMutex
	now    func() time.Time
	policy SubmitPolicy

	mode      domain.Mode
	questions []domain.Question
	index     int
	answers   map[int]domain.UserAnswer
	status    domain.Status
	err       string
	result    *domain.QuizResult

	subscribers map[chan Snapshot]struct{}
}

// NewAttempt builds an idle attempt with the given submit policy.
func NewAttempt(policy SubmitPolicy) *Attempt {
	return NewAttemptWithClock(policy, time.Now)
}

// NewAttemptWithClock allows deterministic timestamps in tests.
func NewAttemptWithClock(policy SubmitPolicy, now func() time.Time) *Attempt {
	return &Attempt{
		now:         now,
		policy:      policy,
		status:      domain.StatusIdle,
		answers:     make(map[int]domain.UserAnswer),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// InitializeQuiz resets the attempt for a new run of the given mode. The
// mode is an opaque tag here; validating it is the controller's job.
func (a *Attempt) InitializeQuiz(mode domain.Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = mode
	a.resetLocked()
	a.broadcastLocked()
}

// SetQuestions replaces the question list and rewinds to the first
// question. Status is left untouched; stale answers and any previous
// result are dropped because they refer to questions no longer present.
func (a *Attempt) SetQuestions(questions []domain.Question) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append([]domain.Question(nil), questions...)
	a.index = 0
	a.answers = make(map[int]domain.UserAnswer)
	a.result = nil
	a.broadcastLocked()
}

// StartQuiz moves the attempt to active. With no questions loaded it is
// a no-op; the controller decides whether that is worth an error.
func (a *Attempt) StartQuiz() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.questions) == 0 || a.status == domain.StatusSubmitting {
		return
	}
	a.status = domain.StatusActive
	a.broadcastLocked()
}

// SelectAnswer upserts the answer for a question. Selecting again
// overwrites; there is never more than one answer per question. Legal
// while active and, for review flows, while submitting.
func (a *Attempt) SelectAnswer(questionID int, option domain.OptionKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != domain.StatusActive && a.status != domain.StatusSubmitting {
		return
	}
	key, ok := domain.ParseOptionKey(string(option))
	if !ok {
		return
	}
	a.answers[questionID] = domain.UserAnswer{
		QuestionID:     questionID,
		SelectedOption: key,
		AnsweredAt:     a.now(),
	}
	a.broadcastLocked()
}

// NextQuestion advances by one, clamped to the last question. Skipping
// an unanswered question is permitted in every mode.
func (a *Attempt) NextQuestion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index < len(a.questions)-1 {
		a.index++
		a.broadcastLocked()
	}
}

// PreviousQuestion steps back by one, clamped to the first question.
func (a *Attempt) PreviousQuestion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index > 0 {
		a.index--
		a.broadcastLocked()
	}
}

// GoToQuestion jumps to an index, clamped into the valid range.
func (a *Attempt) GoToQuestion(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.questions) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(a.questions)-1 {
		index = len(a.questions) - 1
	}
	if index != a.index {
		a.index = index
		a.broadcastLocked()
	}
}

// SubmitQuiz scores the attempt and completes it. Submitting an already
// completed attempt recomputes from the same answers and never double
// counts. With zero questions it is a no-op.
func (a *Attempt) SubmitQuiz() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.questions) == 0 || a.status == domain.StatusIdle {
		return
	}
	a.status = domain.StatusSubmitting
	result := CalculateScore(a.questions, a.answers, a.now())
	a.result = &result
	a.status = domain.StatusCompleted
	a.broadcastLocked()
}

// ResetQuiz clears everything back to the initial idle state.
func (a *Attempt) ResetQuiz() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.broadcastLocked()
}

// SetError records a session error without altering the status.
func (a *Attempt) SetError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = msg
	a.broadcastLocked()
}

// ClearError drops the recorded error.
func (a *Attempt) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err == "" {
		return
	}
	a.err = ""
	a.broadcastLocked()
}

func (a *Attempt) resetLocked() {
	a.questions = nil
	a.index = 0
	a.answers = make(map[int]domain.UserAnswer)
	a.status = domain.StatusIdle
	a.err = ""
	a.result = nil
}

// Snapshot returns the current projection of the attempt.
func (a *Attempt) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Mode returns the mode tag set at initialization.
func (a *Attempt) Mode() domain.Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Status returns the lifecycle state.
func (a *Attempt) Status() domain.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Err returns the recorded session error, empty when none.
func (a *Attempt) Err() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Result returns the computed result, nil before submission.
func (a *Attempt) Result() *domain.QuizResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result
}

// CurrentQuestion returns the question at the cursor, nil when empty.
func (a *Attempt) CurrentQuestion() *domain.Question {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.questions) == 0 {
		return nil
	}
	q := a.questions[a.index]
	return &q
}

// TotalQuestions returns the loaded question count.
func (a *Attempt) TotalQuestions() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.questions)
}

// Questions returns a copy of the loaded question list.
func (a *Attempt) Questions() []domain.Question {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.Question(nil), a.questions...)
}

// Answers returns a copy of the per-question answers.
func (a *Attempt) Answers() map[int]domain.UserAnswer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[int]domain.UserAnswer, len(a.answers))
	for id, ans := range a.answers {
		out[id] = ans
	}
	return out
}

// ProgressPercentage is the cursor position as a share of the total.
func (a *Attempt) ProgressPercentage() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progressLocked()
}

// CanSubmit reports whether the configured submit policy is met while active.
func (a *Attempt) CanSubmit() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canSubmitLocked()
}

// CanGoNext reports whether the cursor can advance.
func (a *Attempt) CanGoNext() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.index < len(a.questions)-1
}

// CanGoPrevious reports whether the cursor can step back.
func (a *Attempt) CanGoPrevious() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.index > 0
}

// Subscribe returns a channel receiving a snapshot after every mutating
// action, starting with the current state. The caller must invoke the
// returned cancel function to avoid leaks.
func (a *Attempt) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := a.snapshotLocked()
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) broadcastLocked() {
	snap := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow consumer cannot block the attempt.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (a *Attempt) snapshotLocked() Snapshot {
	answers := make(map[int]domain.UserAnswer, len(a.answers))
	for id, ans := range a.answers {
		answers[id] = ans
	}
	snap := Snapshot{
		Mode:               a.mode,
		Status:             a.status,
		Questions:          append([]domain.Question(nil), a.questions...),
		CurrentIndex:       a.index,
		TotalQuestions:     len(a.questions),
		Answered:           len(a.answers),
		ProgressPercentage: a.progressLocked(),
		CanSubmit:          a.canSubmitLocked(),
		CanGoNext:          a.index < len(a.questions)-1,
		CanGoPrevious:      a.index > 0,
		Err:                a.err,
		Result:             a.result,
		Answers:            answers,
	}
	if len(a.questions) > 0 {
		q := a.questions[a.index]
		snap.CurrentQuestion = &q
	}
	return snap
}

func (a *Attempt) progressLocked() float64 {
	if len(a.questions) == 0 {
		return 0
	}
	return float64(a.index+1) / float64(len(a.questions)) * 100
}

func (a *Attempt) canSubmitLocked() bool {
	if a.status != domain.StatusActive {
		return false
	}
	return a.policy.Satisfied(len(a.answers), len(a.questions))
}

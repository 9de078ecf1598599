package quiz_test

import (
	"testing"
	"time"

	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/quiz"
)

func newActiveAttempt(t *testing.T, policy quiz.SubmitPolicy, questions []domain.Question) *quiz.Attempt {
	t.Helper()
	attempt := quiz.NewAttemptWithClock(policy, func() time.Time { return submittedAt })
	attempt.InitializeQuiz(domain.ModeSignsPractice)
	attempt.SetQuestions(questions)
	attempt.StartQuiz()
	if attempt.Status() != domain.StatusActive {
		t.Fatalf("expected active attempt, got %s", attempt.Status())
	}
	return attempt
}

func TestStartQuizRequiresQuestions(t *testing.T) {
	attempt := quiz.NewAttempt(quiz.PolicyAnyAnswered)
	attempt.InitializeQuiz(domain.ModeSignsPractice)
	attempt.StartQuiz()
	if attempt.Status() != domain.StatusIdle {
		t.Fatalf("start with no questions must stay idle, got %s", attempt.Status())
	}
}

func TestSelectAnswerOverwrites(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 3)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)

	attempt.SelectAnswer(questions[0].ID, domain.OptionB)
	attempt.SelectAnswer(questions[0].ID, domain.OptionB)
	attempt.SelectAnswer(questions[0].ID, domain.OptionC)

	answers := attempt.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer, got %d", len(answers))
	}
	if answers[questions[0].ID].SelectedOption != domain.OptionC {
		t.Fatalf("expected reselection to overwrite, got %s", answers[questions[0].ID].SelectedOption)
	}
}

func TestSelectAnswerIgnoredWhenIdle(t *testing.T) {
	attempt := quiz.NewAttempt(quiz.PolicyAnyAnswered)
	attempt.InitializeQuiz(domain.ModeSignsPractice)
	attempt.SelectAnswer(1, domain.OptionA)
	if len(attempt.Answers()) != 0 {
		t.Fatalf("idle attempt must not record answers")
	}
}

func TestNavigationClamping(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 3)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)

	attempt.PreviousQuestion() // no-op at index 0
	if got := attempt.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("previous at index 0 must clamp, got %d", got)
	}

	attempt.GoToQuestion(9999)
	if got := attempt.Snapshot().CurrentIndex; got != 2 {
		t.Fatalf("goto past end must clamp to last, got %d", got)
	}

	attempt.NextQuestion() // no-op at last index
	if got := attempt.Snapshot().CurrentIndex; got != 2 {
		t.Fatalf("next at last index must clamp, got %d", got)
	}

	attempt.GoToQuestion(-5)
	if got := attempt.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("goto negative must clamp to 0, got %d", got)
	}

	if !attempt.CanGoNext() || attempt.CanGoPrevious() {
		t.Fatalf("expected canGoNext && !canGoPrevious at index 0")
	}
}

func TestSkippingUnansweredIsAllowed(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 2)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)

	attempt.NextQuestion()
	if got := attempt.Snapshot().CurrentIndex; got != 1 {
		t.Fatalf("expected skip to advance, got index %d", got)
	}
}

func TestSubmitQuizIdempotent(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 4)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)
	for _, q := range questions {
		attempt.SelectAnswer(q.ID, q.CorrectOption)
	}

	attempt.SubmitQuiz()
	first := attempt.Result()
	if first == nil || attempt.Status() != domain.StatusCompleted {
		t.Fatalf("expected completed attempt with result")
	}

	attempt.SubmitQuiz()
	second := attempt.Result()
	if second.CorrectAnswers != first.CorrectAnswers || second.TotalQuestions != first.TotalQuestions {
		t.Fatalf("resubmit must not double count: first=%+v second=%+v", first, second)
	}
}

func TestSubmitQuizWithZeroQuestionsIsNoop(t *testing.T) {
	attempt := quiz.NewAttempt(quiz.PolicyAnyAnswered)
	attempt.InitializeQuiz(domain.ModeSignsPractice)
	attempt.SubmitQuiz()
	if attempt.Result() != nil || attempt.Status() != domain.StatusIdle {
		t.Fatalf("submit with no questions must be a no-op")
	}
}

func TestResetCompleteness(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 3)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)
	attempt.SelectAnswer(questions[0].ID, domain.OptionA)
	attempt.SubmitQuiz()
	attempt.SetError("boom")

	attempt.ResetQuiz()
	snap := attempt.Snapshot()
	if snap.TotalQuestions != 0 || len(snap.Answers) != 0 || snap.Result != nil ||
		snap.Status != domain.StatusIdle || snap.Err != "" {
		t.Fatalf("reset left state behind: %+v", snap)
	}
}

func TestSetErrorKeepsStatus(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 2)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)

	attempt.SetError("bank unavailable")
	if attempt.Status() != domain.StatusActive {
		t.Fatalf("setError must not change status, got %s", attempt.Status())
	}
	if attempt.Err() != "bank unavailable" {
		t.Fatalf("expected recorded error, got %q", attempt.Err())
	}
	attempt.ClearError()
	if attempt.Err() != "" {
		t.Fatalf("expected cleared error")
	}
}

func TestCanSubmitPolicies(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 4)

	practice := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)
	if practice.CanSubmit() {
		t.Fatalf("practice with no answers must not be submittable")
	}
	practice.SelectAnswer(questions[0].ID, domain.OptionA)
	if !practice.CanSubmit() {
		t.Fatalf("practice with one answer must be submittable")
	}

	sim := newActiveAttempt(t, quiz.PolicyHalfAnswered, questions)
	sim.SelectAnswer(questions[0].ID, domain.OptionA)
	if sim.CanSubmit() {
		t.Fatalf("simulation with 1/4 answered must not be submittable")
	}
	sim.SelectAnswer(questions[1].ID, domain.OptionA)
	if !sim.CanSubmit() {
		t.Fatalf("simulation with 2/4 answered must be submittable")
	}
}

func TestProgressPercentage(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 4)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)
	if got := attempt.ProgressPercentage(); got != 25 {
		t.Fatalf("expected 25%% at first question, got %v", got)
	}
	attempt.NextQuestion()
	if got := attempt.ProgressPercentage(); got != 50 {
		t.Fatalf("expected 50%% at second question, got %v", got)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 2)
	attempt := quiz.NewAttempt(quiz.PolicyAnyAnswered)
	ch, cancel := attempt.Subscribe()
	defer cancel()

	<-ch // initial snapshot

	attempt.InitializeQuiz(domain.ModeSignsPractice)
	<-ch
	attempt.SetQuestions(questions)
	<-ch
	attempt.StartQuiz()
	update := <-ch
	if update.Status != domain.StatusActive || update.TotalQuestions != 2 {
		t.Fatalf("expected active snapshot with 2 questions, got %+v", update)
	}
}

func TestResultTimestampFromClock(t *testing.T) {
	questions := makeQuestions(domain.KindSigns, 1)
	attempt := newActiveAttempt(t, quiz.PolicyAnyAnswered, questions)
	attempt.SelectAnswer(questions[0].ID, domain.OptionA)
	attempt.SubmitQuiz()

	if got := attempt.Result().SubmittedAt; !got.Equal(submittedAt) {
		t.Fatalf("expected injected clock timestamp, got %v", got)
	}
}

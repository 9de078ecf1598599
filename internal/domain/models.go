package domain

import (
	"strings"
	"time"
)

// Kind distinguishes the two question sections of the Ontario G1 test.
type Kind string

const (
	KindSigns Kind = "signs"
	KindRules Kind = "rules"
)

// Valid reports whether k is one of the two known sections.
func (k Kind) Valid() bool {
	return k == KindSigns || k == KindRules
}

// KindFilter selects which sections an incorrect-review fetch covers.
type KindFilter string

const (
	FilterSigns KindFilter = "signs"
	FilterRules KindFilter = "rules"
	FilterAll   KindFilter = "all"
)

// Matches reports whether a question of the given kind passes the filter.
func (f KindFilter) Matches(k Kind) bool {
	switch f {
	case FilterAll:
		return true
	case FilterSigns:
		return k == KindSigns
	case FilterRules:
		return k == KindRules
	}
	return false
}

// OptionKey names one of the four answer slots of a question.
type OptionKey string

const (
	OptionA OptionKey = "a"
	OptionB OptionKey = "b"
	OptionC OptionKey = "c"
	OptionD OptionKey = "d"
)

// ParseOptionKey normalizes a raw option string. Option comparison is
// case-insensitive throughout the engine.
func ParseOptionKey(raw string) (OptionKey, bool) {
	switch OptionKey(strings.ToLower(strings.TrimSpace(raw))) {
	case OptionA:
		return OptionA, true
	case OptionB:
		return OptionB, true
	case OptionC:
		return OptionC, true
	case OptionD:
		return OptionD, true
	}
	return "", false
}

// Mode identifies a quiz workflow. Incorrect-review runs on the
// signs_practice base mode.
type Mode string

const (
	ModeSignsPractice Mode = "signs_practice"
	ModeRulesPractice Mode = "rules_practice"
	ModeSimulation    Mode = "simulation"
)

// Status is the lifecycle state of one quiz attempt.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusActive     Status = "active"
	StatusSubmitting Status = "submitting"
	StatusCompleted  Status = "completed"
)

// Question is one immutable quiz item. Records are created by the
// question source adapter and never mutated afterwards.
type Question struct {
	ID               int       `json:"id"`
	Kind             Kind      `json:"questionType"`
	Text             string    `json:"questionText"`
	OptionA          string    `json:"optionA"`
	OptionB          string    `json:"optionB"`
	OptionC          string    `json:"optionC"`
	OptionD          string    `json:"optionD"`
	CorrectOption    OptionKey `json:"correctOption"`
	Category         string    `json:"category"`
	Explanation      string    `json:"explanation"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	ImageDescription string    `json:"imageDescription,omitempty"`
}

// Option returns the text of the given answer slot.
func (q Question) Option(key OptionKey) (string, bool) {
	switch key {
	case OptionA:
		return q.OptionA, true
	case OptionB:
		return q.OptionB, true
	case OptionC:
		return q.OptionC, true
	case OptionD:
		return q.OptionD, true
	}
	return "", false
}

// UserAnswer is one user's response to one question. IsCorrect is
// resolved at scoring time, not at selection time.
type UserAnswer struct {
	QuestionID     int       `json:"questionId"`
	SelectedOption OptionKey `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// QuizResult is the outcome of one completed attempt. Given the same
// questions and answers the result is always identical.
type QuizResult struct {
	Score           int          `json:"score"`
	TotalQuestions  int          `json:"totalQuestions"`
	CorrectAnswers  int          `json:"correctAnswers"`
	SignsScore      int          `json:"signsScore"`
	RulesScore      int          `json:"rulesScore"`
	PercentageScore int          `json:"percentageScore"`
	Passed          bool         `json:"passed"`
	Answers         []UserAnswer `json:"userAnswers"`
	SubmittedAt     time.Time    `json:"submittedAt"`
}

// Mistake records one wrong answer for incorrect-review.
type Mistake struct {
	QuestionID int  `json:"questionId"`
	Kind       Kind `json:"questionType"`
}

// Ontario G1 knowledge test format: 40 questions split evenly between
// signs and rules, 32 correct (80%) to pass.
const (
	SimulationTotal   = 40
	SimulationSigns   = 20
	SimulationRules   = 20
	PassingScore      = 32
	PassingPercentage = 80
)

// ValidLimit reports whether limit is an allowed practice question count.
// The set {10, 20, 40} is closed; anything else is a precondition violation.
func ValidLimit(limit int) bool {
	switch limit {
	case 10, 20, 40:
		return true
	}
	return false
}

// TestConfig describes the fixed simulation layout for UI consumers.
type TestConfig struct {
	TotalQuestions    int `json:"totalQuestions"`
	SignsRequired     int `json:"signsRequired"`
	RulesRequired     int `json:"rulesRequired"`
	PassingScore      int `json:"passingScore"`
	PassingPercentage int `json:"passingPercentage"`
}

// G1TestConfig returns the real-exam layout constants.
func G1TestConfig() TestConfig {
	return TestConfig{
		TotalQuestions:    SimulationTotal,
		SignsRequired:     SimulationSigns,
		RulesRequired:     SimulationRules,
		PassingScore:      PassingScore,
		PassingPercentage: PassingPercentage,
	}
}

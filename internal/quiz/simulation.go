package quiz

import (
	"context"

	"g1-quiz-service/internal/domain"
)

// SimulationController runs the fixed-format 40-question G1 mock exam.
// The 20 signs + 20 rules layout is a hard domain guarantee: the adapter
// already enforces it, and the controller verifies it again because the
// question service is an external collaborator that is not fully trusted.
type SimulationController struct {
	controller
	source Source
}

// NewSimulationController wires the simulation workflow.
func NewSimulationController(attempt *Attempt, source Source) *SimulationController {
	return &SimulationController{
		controller: controller{attempt: attempt},
		source:     source,
	}
}

// Initialize fetches the simulation set and starts the quiz only when
// the loaded set actually matches the G1 layout.
func (c *SimulationController) Initialize(ctx context.Context) error {
	gen, err := c.begin()
	if err != nil {
		return err
	}
	c.attempt.InitializeQuiz(domain.ModeSimulation)

	questions, fetchErr := c.source.SimulationQuestions(ctx)
	if !c.finish(gen) {
		return nil
	}
	if fetchErr != nil {
		c.attempt.SetError(fetchErr.Error())
		return fetchErr
	}
	c.attempt.SetQuestions(questions)
	if err := c.verifyFormat(); err != nil {
		c.attempt.SetError(err.Error())
		return err
	}
	c.attempt.StartQuiz()
	return nil
}

// Restart performs a full clean re-entry.
func (c *SimulationController) Restart(ctx context.Context) error {
	c.attempt.ResetQuiz()
	return c.Initialize(ctx)
}

// TestConfig returns the fixed exam layout for UI consumers.
func (c *SimulationController) TestConfig() domain.TestConfig {
	return domain.G1TestConfig()
}

// SignsQuestions returns the loaded signs section.
func (c *SimulationController) SignsQuestions() []domain.Question {
	return c.questionsOfKind(domain.KindSigns)
}

// RulesQuestions returns the loaded rules section.
func (c *SimulationController) RulesQuestions() []domain.Question {
	return c.questionsOfKind(domain.KindRules)
}

// IsValidG1Format reports whether the loaded set is exactly 40 questions
// split 20 signs / 20 rules.
func (c *SimulationController) IsValidG1Format() bool {
	return c.verifyFormat() == nil
}

// CanStartSimulation gates entry: the format must hold and the quiz must
// not already be running.
func (c *SimulationController) CanStartSimulation() bool {
	return c.IsValidG1Format() && c.attempt.Status() != domain.StatusActive
}

// SignsAnswered counts answered signs questions for progress display.
func (c *SimulationController) SignsAnswered() int {
	return c.answeredOfKind(domain.KindSigns)
}

// RulesAnswered counts answered rules questions for progress display.
func (c *SimulationController) RulesAnswered() int {
	return c.answeredOfKind(domain.KindRules)
}

// SignsCorrect is the correct signs count; meaningful only after submit.
func (c *SimulationController) SignsCorrect() int {
	return c.correctOfKind(domain.KindSigns)
}

// RulesCorrect is the correct rules count; meaningful only after submit.
func (c *SimulationController) RulesCorrect() int {
	return c.correctOfKind(domain.KindRules)
}

func (c *SimulationController) verifyFormat() error {
	var signs, rules int
	questions := c.attempt.Questions()
	for _, q := range questions {
		switch q.Kind {
		case domain.KindSigns:
			signs++
		case domain.KindRules:
			rules++
		}
	}
	if len(questions) != domain.SimulationTotal || signs != domain.SimulationSigns || rules != domain.SimulationRules {
		return &domain.FormatError{GotTotal: len(questions), GotSigns: signs, GotRules: rules}
	}
	return nil
}

func (c *SimulationController) questionsOfKind(kind domain.Kind) []domain.Question {
	var out []domain.Question
	for _, q := range c.attempt.Questions() {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

func (c *SimulationController) answeredOfKind(kind domain.Kind) int {
	answers := c.attempt.Answers()
	count := 0
	for _, q := range c.attempt.Questions() {
		if q.Kind != kind {
			continue
		}
		if _, ok := answers[q.ID]; ok {
			count++
		}
	}
	return count
}

func (c *SimulationController) correctOfKind(kind domain.Kind) int {
	result := c.attempt.Result()
	if result == nil {
		return 0
	}
	byID := make(map[int]domain.Kind)
	for _, q := range c.attempt.Questions() {
		byID[q.ID] = q.Kind
	}
	count := 0
	for _, ans := range result.Answers {
		if ans.IsCorrect && byID[ans.QuestionID] == kind {
			count++
		}
	}
	return count
}

package quiz

import (
	"math"
	"time"

	"g1-quiz-service/internal/domain"
)

// CalculateScore grades an answer set against a question list. It is a
// pure function: no randomness, no external calls, identical output for
// identical input. Unanswered questions count toward the total but are
// neither correct nor incorrect. Option comparison is case-insensitive.
func CalculateScore(questions []domain.Question, answers map[int]domain.UserAnswer, submittedAt time.Time) domain.QuizResult {
	result := domain.QuizResult{
		TotalQuestions: len(questions),
		SubmittedAt:    submittedAt,
	}
	if len(questions) == 0 {
		return result
	}

	var signsTotal, signsCorrect, rulesTotal, rulesCorrect int
	resolved := make([]domain.UserAnswer, 0, len(answers))

	for _, q := range questions {
		switch q.Kind {
		case domain.KindSigns:
			signsTotal++
		case domain.KindRules:
			rulesTotal++
		}

		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		selected, _ := domain.ParseOptionKey(string(answer.SelectedOption))
		correct, _ := domain.ParseOptionKey(string(q.CorrectOption))
		answer.IsCorrect = selected != "" && selected == correct
		resolved = append(resolved, answer)

		if !answer.IsCorrect {
			continue
		}
		result.CorrectAnswers++
		switch q.Kind {
		case domain.KindSigns:
			signsCorrect++
		case domain.KindRules:
			rulesCorrect++
		}
	}

	result.Score = result.CorrectAnswers
	result.SignsScore = percentage(signsCorrect, signsTotal)
	result.RulesScore = percentage(rulesCorrect, rulesTotal)
	result.PercentageScore = percentage(result.CorrectAnswers, result.TotalQuestions)
	result.Passed = result.PercentageScore >= domain.PassingPercentage
	result.Answers = resolved
	return result
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

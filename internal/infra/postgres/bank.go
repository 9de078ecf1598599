package postgres

import (
	"context"
	"fmt"

	"g1-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const questionColumns = `id, kind, question_text, option_a, option_b, option_c, option_d,
	correct_option, category, explanation, COALESCE(image_url, ''), COALESCE(image_description, '')`

// Bank loads question records from Postgres. Practice and simulation
// draws are randomized server-side with ORDER BY random().
type Bank struct {
	pool *pgxpool.Pool
}

// NewBank builds the bank over a pgx pool.
func NewBank(pool *pgxpool.Pool) *Bank {
	return &Bank{pool: pool}
}

func (b *Bank) QuestionsByKind(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE kind=$1 ORDER BY random() LIMIT $2`,
		string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", kind, err)
	}
	return scanQuestions(rows)
}

func (b *Bank) SimulationSet(ctx context.Context) ([]domain.Question, error) {
	signs, err := b.QuestionsByKind(ctx, domain.KindSigns, domain.SimulationSigns)
	if err != nil {
		return nil, err
	}
	rules, err := b.QuestionsByKind(ctx, domain.KindRules, domain.SimulationRules)
	if err != nil {
		return nil, err
	}
	return append(signs, rules...), nil
}

func (b *Bank) QuestionsByID(ctx context.Context, ids []int) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	arg := make([]int32, len(ids))
	for i, id := range ids {
		arg[i] = int32(id)
	}
	rows, err := b.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1) ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("query questions by id: %w", err)
	}
	return scanQuestions(rows)
}

// InsertQuestion writes one record; used by the seed command.
func (b *Bank) InsertQuestion(ctx context.Context, q domain.Question) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO questions
			(kind, question_text, option_a, option_b, option_c, option_d,
			 correct_option, category, explanation, image_url, image_description)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),NULLIF($11,''))`,
		string(q.Kind), q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		string(q.CorrectOption), q.Category, q.Explanation, q.ImageURL, q.ImageDescription)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()
	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		var kind, correct string
		if err := rows.Scan(&q.ID, &kind, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&correct, &q.Category, &q.Explanation, &q.ImageURL, &q.ImageDescription); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Kind = domain.Kind(kind)
		q.CorrectOption = domain.OptionKey(correct)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return out, nil
}

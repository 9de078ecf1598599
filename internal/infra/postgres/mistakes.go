package postgres

import (
	"context"
	"fmt"

	"g1-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// MistakeStore persists per-user wrong answers in the incorrect_answers
// table, one row per (user, question).
type MistakeStore struct {
	pool *pgxpool.Pool
}

// NewMistakeStore builds the store over a pgx pool.
func NewMistakeStore(pool *pgxpool.Pool) *MistakeStore {
	return &MistakeStore{pool: pool}
}

func (s *MistakeStore) Record(ctx context.Context, userID string, mistakes []domain.Mistake) error {
	for _, m := range mistakes {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO incorrect_answers (user_id, question_id, kind)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, question_id) DO UPDATE SET recorded_at = now()`,
			userID, m.QuestionID, string(m.Kind))
		if err != nil {
			return fmt.Errorf("record mistake: %w", err)
		}
	}
	return nil
}

func (s *MistakeStore) Clear(ctx context.Context, userID string, questionIDs []int) error {
	if len(questionIDs) == 0 {
		return nil
	}
	arg := make([]int32, len(questionIDs))
	for i, id := range questionIDs {
		arg[i] = int32(id)
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM incorrect_answers WHERE user_id=$1 AND question_id = ANY($2)`, userID, arg)
	if err != nil {
		return fmt.Errorf("clear mistakes: %w", err)
	}
	return nil
}

func (s *MistakeStore) QuestionIDs(ctx context.Context, userID string, filter domain.KindFilter) ([]int, error) {
	query := `SELECT question_id FROM incorrect_answers WHERE user_id=$1`
	args := []interface{}{userID}
	if filter == domain.FilterSigns || filter == domain.FilterRules {
		query += ` AND kind=$2`
		args = append(args, string(filter))
	}
	rows, err := s.pool.Query(ctx, query+` ORDER BY question_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query mistakes: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan mistake: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read mistakes: %w", err)
	}
	return out, nil
}

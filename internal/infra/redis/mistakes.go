package redis

import (
	"context"
	"strconv"

	"g1-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// MistakeStore keeps each user's wrong answers in per-section Redis sets:
//
//	SADD mistakes:{userID}:signs {questionID}
//	SADD mistakes:{userID}:rules {questionID}
type MistakeStore struct {
	client *redis.Client
}

// NewMistakeStore builds the store over an existing client.
func NewMistakeStore(client *redis.Client) *MistakeStore {
	return &MistakeStore{client: client}
}

func (s *MistakeStore) Record(ctx context.Context, userID string, mistakes []domain.Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, m := range mistakes {
		pipe.SAdd(ctx, s.key(userID, m.Kind), m.QuestionID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *MistakeStore) Clear(ctx context.Context, userID string, questionIDs []int) error {
	if len(questionIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		members[i] = id
	}
	pipe := s.client.Pipeline()
	// the kind is unknown at clear time, remove from both sections
	pipe.SRem(ctx, s.key(userID, domain.KindSigns), members...)
	pipe.SRem(ctx, s.key(userID, domain.KindRules), members...)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *MistakeStore) QuestionIDs(ctx context.Context, userID string, filter domain.KindFilter) ([]int, error) {
	var keys []string
	switch filter {
	case domain.FilterSigns:
		keys = []string{s.key(userID, domain.KindSigns)}
	case domain.FilterRules:
		keys = []string{s.key(userID, domain.KindRules)}
	default:
		keys = []string{s.key(userID, domain.KindSigns), s.key(userID, domain.KindRules)}
	}

	var out []int
	for _, key := range keys {
		members, err := s.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			if id, err := strconv.Atoi(member); err == nil {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (s *MistakeStore) key(userID string, kind domain.Kind) string {
	return "mistakes:" + userID + ":" + string(kind)
}

package memory

import (
	"context"
	"sync"

	"g1-quiz-service/internal/domain"
)

// MistakeStore is an in-memory implementation of questions.MistakeStore.
type MistakeStore struct {
	mu     sync.RWMutex
	byUser map[string]map[int]domain.Kind
}

// NewMistakeStore builds an empty store.
func NewMistakeStore() *MistakeStore {
	return &MistakeStore{byUser: make(map[string]map[int]domain.Kind)}
}

func (s *MistakeStore) Record(_ context.Context, userID string, mistakes []domain.Mistake) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byUser[userID]
	if !ok {
		user = make(map[int]domain.Kind)
		s.byUser[userID] = user
	}
	for _, m := range mistakes {
		user[m.QuestionID] = m.Kind
	}
	return nil
}

func (s *MistakeStore) Clear(_ context.Context, userID string, questionIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byUser[userID]
	if !ok {
		return nil
	}
	for _, id := range questionIDs {
		delete(user, id)
	}
	if len(user) == 0 {
		delete(s.byUser, userID)
	}
	return nil
}

func (s *MistakeStore) QuestionIDs(_ context.Context, userID string, filter domain.KindFilter) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int
	for id, kind := range s.byUser[userID] {
		if filter.Matches(kind) {
			out = append(out, id)
		}
	}
	return out, nil
}

package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"g1-quiz-service/internal/domain"
)

// StaticBank is a question bank backed by an in-memory slice (useful for
// tests and demos without Postgres). Practice draws are shuffled with
// the bank's own rand source so callers can seed it deterministically.
type StaticBank struct {
	mu        sync.Mutex
	questions []domain.Question
	rnd       *rand.Rand
}

// NewStaticBank builds a bank over the given records.
func NewStaticBank(questions []domain.Question) *StaticBank {
	return NewStaticBankWithSeed(questions, time.Now().UnixNano())
}

// NewStaticBankWithSeed fixes the shuffle seed for deterministic tests.
func NewStaticBankWithSeed(questions []domain.Question, seed int64) *StaticBank {
	return &StaticBank{
		questions: append([]domain.Question(nil), questions...),
		rnd:       rand.New(rand.NewSource(seed)),
	}
}

func (b *StaticBank) QuestionsByKind(_ context.Context, kind domain.Kind, limit int) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawLocked(kind, limit), nil
}

// SimulationSet draws 20 signs and 20 rules. A bank too small to honor
// the layout returns what it has; the adapter reports the violation.
func (b *StaticBank) SimulationSet(_ context.Context) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.drawLocked(domain.KindSigns, domain.SimulationSigns)
	return append(set, b.drawLocked(domain.KindRules, domain.SimulationRules)...), nil
}

func (b *StaticBank) QuestionsByID(_ context.Context, ids []int) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Question
	for _, q := range b.questions {
		if _, ok := want[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *StaticBank) drawLocked(kind domain.Kind, limit int) []domain.Question {
	var pool []domain.Question
	for _, q := range b.questions {
		if q.Kind == kind {
			pool = append(pool, q)
		}
	}
	b.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if limit > 0 && limit < len(pool) {
		pool = pool[:limit]
	}
	return pool
}

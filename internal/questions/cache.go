package questions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"g1-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedBank decorates a Bank with a TTL cache to avoid hammering the
// backing store on every quiz start. Lookups by id pass through so
// review always sees current content.
type CachedBank struct {
	inner Bank
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

// NewCachedBank wraps inner with the given TTL.
func NewCachedBank(inner Bank, ttl time.Duration) *CachedBank {
	return &CachedBank{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedSet),
	}
}

func (b *CachedBank) QuestionsByKind(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error) {
	key := fmt.Sprintf("practice:%s:%d", kind, limit)
	return b.getOrLoad(ctx, key, func(ctx context.Context) ([]domain.Question, error) {
		return b.inner.QuestionsByKind(ctx, kind, limit)
	})
}

func (b *CachedBank) SimulationSet(ctx context.Context) ([]domain.Question, error) {
	return b.getOrLoad(ctx, "simulation", b.inner.SimulationSet)
}

func (b *CachedBank) QuestionsByID(ctx context.Context, ids []int) ([]domain.Question, error) {
	return b.inner.QuestionsByID(ctx, ids)
}

func (b *CachedBank) getOrLoad(ctx context.Context, key string, load func(context.Context) ([]domain.Question, error)) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		questions, err := load(ctx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[key] = cachedSet{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *CachedBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/questions"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Bank caches question sets in Redis as JSON blobs and falls back to an
// inner bank on cache miss:
//
//	SET qbank:practice:{kind}:{limit} <json> EX ttl
//	SET qbank:simulation              <json> EX ttl
//
// Lookups by id always pass through so review sees current content.
type Bank struct {
	client *redis.Client
	inner  questions.Bank
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

// NewBank wraps inner with a Redis cache.
func NewBank(client *redis.Client, inner questions.Bank, ttl time.Duration) *Bank {
	return &Bank{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *Bank) QuestionsByKind(ctx context.Context, kind domain.Kind, limit int) ([]domain.Question, error) {
	key := fmt.Sprintf("qbank:practice:%s:%d", kind, limit)
	return b.getOrLoad(ctx, key, func(ctx context.Context) ([]domain.Question, error) {
		return b.inner.QuestionsByKind(ctx, kind, limit)
	})
}

func (b *Bank) SimulationSet(ctx context.Context) ([]domain.Question, error) {
	return b.getOrLoad(ctx, "qbank:simulation", b.inner.SimulationSet)
}

func (b *Bank) QuestionsByID(ctx context.Context, ids []int) ([]domain.Question, error) {
	return b.inner.QuestionsByID(ctx, ids)
}

func (b *Bank) getOrLoad(ctx context.Context, key string, load func(context.Context) ([]domain.Question, error)) ([]domain.Question, error) {
	if cached, err := b.client.Get(ctx, key).Bytes(); err == nil && len(cached) > 0 {
		var set []domain.Question
		if err := json.Unmarshal(cached, &set); err == nil {
			return set, nil
		}
		// corrupt entry, drop it and reload
		_ = b.client.Del(ctx, key).Err()
	}

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := b.client.Get(ctx, key).Bytes(); err == nil && len(cached) > 0 {
			var set []domain.Question
			if err := json.Unmarshal(cached, &set); err == nil {
				return set, nil
			}
		}

		set, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(set); err == nil {
			// best-effort write; a cache failure must not fail the fetch
			_ = b.client.Set(ctx, key, raw, b.ttlWithJitter()).Err()
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *Bank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

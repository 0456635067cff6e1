package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizblox-service/internal/domain"
)

// BankLoader fetches the full normalized question pool from a backing store
// (a JSON bank file, a database, etc).
type BankLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionBank caches the loaded pool with a TTL to avoid re-reading the
// backing store on every quiz start.
type QuestionBank struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader BankLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetQuestions returns the full cached pool. The local bank carries no
// category or difficulty metadata, so the filters are ignored; selection and
// count limiting happen in the session layer.
func (b *QuestionBank) GetQuestions(ctx context.Context, _ int, _ int, _ string) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if b.pool != nil && b.expiresAt.After(now) {
		pool := b.pool
		b.mu.RUnlock()
		return pool, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("bank", func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if b.pool != nil && b.expiresAt.After(now) {
			pool := b.pool
			b.mu.RUnlock()
			return pool, nil
		}
		b.mu.RUnlock()

		pool, err := b.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.pool = pool
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// StaticBankLoader serves a fixed pool (tests and demos).
type StaticBankLoader struct {
	pool []domain.Question
}

func NewStaticBankLoader(pool []domain.Question) *StaticBankLoader {
	return &StaticBankLoader{pool: pool}
}

func (l *StaticBankLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.pool, nil
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

package memory

import (
	"context"
	"testing"
	"time"

	"quizblox-service/internal/domain"
)

func TestQuestionBankCachesPool(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader(samplePool())}
	bank := NewQuestionBank(loader, time.Minute)

	pool, err := bank.GetQuestions(context.Background(), 10, 0, "")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	_, _ = bank.GetQuestions(context.Background(), 10, 0, "")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuestionBankReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader(samplePool())}
	bank := NewQuestionBank(loader, time.Minute)

	now := time.Unix(1747040000, 0)
	bank.clock = func() time.Time { return now }

	_, _ = bank.GetQuestions(context.Background(), 10, 0, "")
	now = now.Add(2 * time.Minute)
	_, _ = bank.GetQuestions(context.Background(), 10, 0, "")

	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.BankLoader.LoadQuestions(ctx)
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			ID:   "0",
			Text: "What is 2 + 2?",
			Options: map[string]string{
				"A": "3", "B": "4", "C": "5", "D": "6",
			},
			CorrectLabel: "B",
		},
		{
			ID:   "1",
			Text: "What is 3 + 3?",
			Options: map[string]string{
				"A": "4", "B": "5", "C": "6", "D": "7",
			},
			CorrectLabel: "C",
		},
	}
}

// Package local loads the question bank from a JSON file on disk, the
// original flat-file source of quiz questions.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
)

// BankFile reads pre-labeled questions from a JSON file. It implements
// memory.BankLoader; wrap it in memory.NewQuestionBank to avoid hitting the
// disk on every quiz start.
type BankFile struct {
	path string
}

func NewBankFile(path string) *BankFile {
	return &BankFile{path: path}
}

func (b *BankFile) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("read bank %s: %w", b.path, err)
	}
	var raw []domain.LocalQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse bank %s: %w", b.path, err)
	}
	return app.NormalizeLocalBatch(raw), nil
}

package app

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"quizblox-service/internal/domain"
)

func TestFromLocalPassThrough(t *testing.T) {
	raw := domain.LocalQuestion{
		Question: "What is the capital of France?",
		A:        "Berlin", B: "Paris", C: "Madrid", D: "Rome",
		Answer: "B",
	}

	question, err := FromLocal(raw, "7")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if question.ID != "7" {
		t.Fatalf("expected fallback id, got %q", question.ID)
	}
	if question.CorrectLabel != "B" || question.Options["B"] != "Paris" {
		t.Fatalf("expected correct label B -> Paris, got %q -> %q", question.CorrectLabel, question.Options[question.CorrectLabel])
	}
}

func TestFromLocalRejectsBadAnswerKey(t *testing.T) {
	raw := domain.LocalQuestion{
		Question: "Broken",
		A:        "1", B: "2", C: "3", D: "4",
		Answer: "E",
	}
	if _, err := FromLocal(raw, "0"); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question error, got %v", err)
	}
}

func TestFromLocalRejectsMissingOption(t *testing.T) {
	raw := domain.LocalQuestion{
		Question: "Broken",
		A:        "1", B: "2", C: "3",
		Answer: "A",
	}
	if _, err := FromLocal(raw, "0"); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question error, got %v", err)
	}
}

func TestFromTriviaShuffleIsPermutation(t *testing.T) {
	raw := domain.TriviaQuestion{
		Question:         "What is the capital of France?",
		CorrectAnswer:    "Paris",
		IncorrectAnswers: []string{"Rome", "Berlin", "Madrid"},
	}

	for seed := int64(0); seed < 20; seed++ {
		question, err := FromTrivia(raw, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: normalize: %v", seed, err)
		}

		got := make([]string, 0, len(question.Options))
		for _, label := range domain.OptionLabels {
			got = append(got, question.Options[label])
		}
		sort.Strings(got)
		want := []string{"Berlin", "Madrid", "Paris", "Rome"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("seed %d: option multiset changed: %v", seed, got)
			}
		}

		if question.Options[question.CorrectLabel] != "Paris" {
			t.Fatalf("seed %d: correct label %q maps to %q, want Paris",
				seed, question.CorrectLabel, question.Options[question.CorrectLabel])
		}
	}
}

func TestFromTriviaUnescapesEntities(t *testing.T) {
	raw := domain.TriviaQuestion{
		Question:         "2 &amp; 2 = ?",
		CorrectAnswer:    "4 &lt; 5",
		IncorrectAnswers: []string{"1", "2", "3"},
	}

	question, err := FromTrivia(raw, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if question.Text != "2 & 2 = ?" {
		t.Fatalf("question not unescaped: %q", question.Text)
	}
	if question.Options[question.CorrectLabel] != "4 < 5" {
		t.Fatalf("correct option not unescaped: %q", question.Options[question.CorrectLabel])
	}
}

func TestFromTriviaRejectsWrongOptionCount(t *testing.T) {
	raw := domain.TriviaQuestion{
		Question:         "True or false?",
		CorrectAnswer:    "True",
		IncorrectAnswers: []string{"False"},
	}
	if _, err := FromTrivia(raw, rand.New(rand.NewSource(1))); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question error, got %v", err)
	}
}

func TestNormalizeLocalBatchDropsMalformed(t *testing.T) {
	raw := []domain.LocalQuestion{
		{Question: "ok", A: "1", B: "2", C: "3", D: "4", Answer: "A"},
		{Question: "bad answer", A: "1", B: "2", C: "3", D: "4", Answer: "X"},
		{Question: "also ok", A: "1", B: "2", C: "3", D: "4", Answer: "D"},
	}

	questions := NormalizeLocalBatch(raw)
	if len(questions) != 2 {
		t.Fatalf("expected 2 surviving questions, got %d", len(questions))
	}
	if questions[0].Text != "ok" || questions[1].Text != "also ok" {
		t.Fatalf("wrong survivors: %+v", questions)
	}
}

package app

import (
	"fmt"
	"html"
	"log"
	"math/rand"
	"strconv"

	"quizblox-service/internal/domain"
)

// FromLocal converts a pre-labeled bank entry into a normalized Question.
// The stored answer key must resolve to one of the four option labels; a
// non-matching key is a data-integrity error, not something to silently fix.
func FromLocal(raw domain.LocalQuestion, fallbackID string) (domain.Question, error) {
	options := map[string]string{
		"A": raw.A,
		"B": raw.B,
		"C": raw.C,
		"D": raw.D,
	}
	for _, label := range domain.OptionLabels {
		if options[label] == "" {
			return domain.Question{}, fmt.Errorf("%w: missing option %s", domain.ErrMalformedQuestion, label)
		}
	}
	if _, ok := options[raw.Answer]; !ok {
		return domain.Question{}, fmt.Errorf("%w: answer key %q is not a label", domain.ErrMalformedQuestion, raw.Answer)
	}

	id := raw.ID
	if id == "" {
		id = fallbackID
	}
	return domain.Question{
		ID:           id,
		Text:         raw.Question,
		Options:      options,
		CorrectLabel: raw.Answer,
	}, nil
}

// FromTrivia merges a remote question's correct and incorrect answers,
// shuffles them, and recomputes which label holds the correct text. Entity
// escapes in the remote payload are decoded before emitting.
func FromTrivia(raw domain.TriviaQuestion, rng *rand.Rand) (domain.Question, error) {
	if len(raw.IncorrectAnswers)+1 != len(domain.OptionLabels) {
		return domain.Question{}, fmt.Errorf("%w: got %d options, want %d",
			domain.ErrMalformedQuestion, len(raw.IncorrectAnswers)+1, len(domain.OptionLabels))
	}

	correct := html.UnescapeString(raw.CorrectAnswer)
	texts := make([]string, 0, len(domain.OptionLabels))
	for _, incorrect := range raw.IncorrectAnswers {
		texts = append(texts, html.UnescapeString(incorrect))
	}
	texts = append(texts, correct)

	rng.Shuffle(len(texts), func(i, j int) {
		texts[i], texts[j] = texts[j], texts[i]
	})

	options := make(map[string]string, len(domain.OptionLabels))
	correctLabel := ""
	for i, label := range domain.OptionLabels {
		options[label] = texts[i]
		if correctLabel == "" && texts[i] == correct {
			correctLabel = label
		}
	}
	if correctLabel == "" {
		// Unreachable with correct construction above; treat as data corruption.
		return domain.Question{}, fmt.Errorf("%w: correct answer lost during shuffle", domain.ErrMalformedQuestion)
	}

	return domain.Question{
		Text:         html.UnescapeString(raw.Question),
		Options:      options,
		CorrectLabel: correctLabel,
	}, nil
}

// NormalizeLocalBatch converts a bank file's entries, dropping malformed ones
// rather than failing the whole batch.
func NormalizeLocalBatch(raw []domain.LocalQuestion) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for i, entry := range raw {
		question, err := FromLocal(entry, strconv.Itoa(i))
		if err != nil {
			log.Printf("dropping question %d: %v", i, err)
			continue
		}
		questions = append(questions, question)
	}
	return questions
}

// NormalizeTriviaBatch converts remote questions, dropping malformed ones.
// IDs are assigned positionally; remote questions carry none of their own.
func NormalizeTriviaBatch(raw []domain.TriviaQuestion, rng *rand.Rand) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for i, entry := range raw {
		question, err := FromTrivia(entry, rng)
		if err != nil {
			log.Printf("dropping trivia question %d: %v", i, err)
			continue
		}
		question.ID = "t" + strconv.Itoa(i)
		questions = append(questions, question)
	}
	return questions
}

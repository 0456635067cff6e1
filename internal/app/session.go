package app

import (
	"math"
	"math/rand"
	"time"

	"quizblox-service/internal/domain"
)

// SessionConfig carries the immutable setup parameters for one play-through.
type SessionConfig struct {
	RequestedCount int
	TimerDuration  int
	CategoryID     int
	CategoryName   string
	Difficulty     string
}

// StartSession builds a fresh quiz session from a question pool: the pool is
// shuffled, the first min(requested, available) questions are taken, and the
// counters are zeroed. An empty pool fails with ErrNoQuestionsAvailable and
// no session is created.
func StartSession(pool []domain.Question, cfg SessionConfig, rng *rand.Rand, now func() time.Time) (*domain.QuizSession, error) {
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}

	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := cfg.RequestedCount
	if count <= 0 || count > len(shuffled) {
		count = len(shuffled)
	}

	return &domain.QuizSession{
		Questions:      shuffled[:count],
		CurrentIndex:   0,
		Score:          0,
		AnswerLog:      []domain.AnswerRecord{},
		TimerDuration:  cfg.TimerDuration,
		TotalQuestions: count,
		CategoryID:     cfg.CategoryID,
		CategoryName:   cfg.CategoryName,
		Difficulty:     cfg.Difficulty,
		StartedAt:      now(),
	}, nil
}

// CurrentQuestion returns the question at the session's cursor, or
// ErrNoActiveQuestion once every question has been answered.
func CurrentQuestion(session *domain.QuizSession) (domain.Question, error) {
	if session.Finalized {
		return domain.Question{}, domain.ErrSessionFinalized
	}
	if session.Complete() {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	return session.Questions[session.CurrentIndex], nil
}

// SubmitAnswer scores the submission against the current question, appends
// exactly one answer record, and advances the cursor exactly once. It is not
// idempotent: it must be called once per question presentation.
func SubmitAnswer(session *domain.QuizSession, selectedLabel string, timeUp bool) (domain.AnswerRecord, error) {
	question, err := CurrentQuestion(session)
	if err != nil {
		return domain.AnswerRecord{}, err
	}

	record := scoreAnswer(question, selectedLabel, timeUp)
	if record.IsCorrect {
		session.Score++
	}
	session.AnswerLog = append(session.AnswerLog, record)
	session.CurrentIndex++
	return record, nil
}

// scoreAnswer is the pure scoring rule. A timeout always counts as incorrect
// and blanks the stored selection, even when a label was transmitted
// alongside the timeout flag (clients may retransmit a stale pick).
func scoreAnswer(question domain.Question, selectedLabel string, timeUp bool) domain.AnswerRecord {
	correct := !timeUp && selectedLabel == question.CorrectLabel

	selectedText := ""
	if timeUp {
		selectedLabel = ""
	} else {
		selectedText = question.Options[selectedLabel]
	}

	return domain.AnswerRecord{
		QuestionID:    question.ID,
		QuestionText:  question.Text,
		SelectedLabel: selectedLabel,
		SelectedText:  selectedText,
		CorrectLabel:  question.CorrectLabel,
		CorrectText:   question.Options[question.CorrectLabel],
		IsCorrect:     correct,
		IsTimeUp:      timeUp,
	}
}

// Finalize computes the result for a completed session and marks it terminal.
// A second Finalize on the same session is rejected, never re-executed.
func Finalize(session *domain.QuizSession) (domain.QuizResult, error) {
	if session.Finalized {
		return domain.QuizResult{}, domain.ErrSessionFinalized
	}
	if !session.Complete() {
		return domain.QuizResult{}, domain.ErrQuizIncomplete
	}
	session.Finalized = true

	percentage := 0
	if session.TotalQuestions > 0 {
		percentage = int(math.Round(100 * float64(session.Score) / float64(session.TotalQuestions)))
	}

	return domain.QuizResult{
		Score:          session.Score,
		TotalQuestions: session.TotalQuestions,
		Percentage:     percentage,
		CategoryName:   session.CategoryName,
		Difficulty:     session.Difficulty,
		AnswerLog:      session.AnswerLog,
	}, nil
}

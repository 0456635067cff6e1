package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"quizblox-service/internal/domain"
)

// SessionStore is the per-user mutable slot holding the active quiz,
// addressable by session identifier (in-memory, Redis, etc).
type SessionStore interface {
	Quiz(ctx context.Context, sessionID string) (domain.QuizSession, bool, error)
	SetQuiz(ctx context.Context, sessionID string, session domain.QuizSession) error
	ClearQuiz(ctx context.Context, sessionID string) error
}

// QuestionSource supplies normalized questions. Sources may return fewer
// than requested, or none at all; count and the filters are hints that only
// some sources honor.
type QuestionSource interface {
	GetQuestions(ctx context.Context, count, categoryID int, difficulty string) ([]domain.Question, error)
}

// CategorySource lists the categories offered at quiz setup.
type CategorySource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// HistoryStore persists finished quizzes and aggregates scores.
type HistoryStore interface {
	Append(ctx context.Context, userID string, record domain.ScoreRecord) error
	History(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
	TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Source selects where a quiz draws its questions from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceTrivia Source = "trivia"
)

const (
	defaultQuestionCount = 10
	defaultTimerDuration = 30
)

// StartQuizRequest carries the setup form parameters.
type StartQuizRequest struct {
	Source        Source
	QuestionCount int
	TimerDuration int
	CategoryID    int
	CategoryName  string
	Difficulty    string
}

// QuizService drives quiz sessions from setup through finalized results.
type QuizService struct {
	sessions   SessionStore
	local      QuestionSource
	trivia     QuestionSource
	categories CategorySource
	history    HistoryStore

	now func() time.Time

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewQuizService(sessions SessionStore, local, trivia QuestionSource, categories CategorySource, history HistoryStore) *QuizService {
	return &QuizService{
		sessions:   sessions,
		local:      local,
		trivia:     trivia,
		categories: categories,
		history:    history,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewQuizServiceWithRand is test-only for deterministic shuffles and
// timestamps.
func NewQuizServiceWithRand(sessions SessionStore, local, trivia QuestionSource, categories CategorySource, history HistoryStore, rng *rand.Rand, now func() time.Time) *QuizService {
	service := NewQuizService(sessions, local, trivia, categories, history)
	service.rng = rng
	service.now = now
	return service
}

// StartQuiz fetches a question pool, builds a fresh session, and stores it
// under the session ID. Any previous session under the same ID is
// overwritten, so stale state never leaks into a new play-through.
func (s *QuizService) StartQuiz(ctx context.Context, sessionID string, req StartQuizRequest) (domain.QuestionView, error) {
	if req.QuestionCount <= 0 {
		req.QuestionCount = defaultQuestionCount
	}
	if req.TimerDuration <= 0 {
		req.TimerDuration = defaultTimerDuration
	}

	source := s.local
	if req.Source == SourceTrivia && s.trivia != nil {
		source = s.trivia
	}

	pool, err := source.GetQuestions(ctx, req.QuestionCount, req.CategoryID, req.Difficulty)
	if err != nil {
		return domain.QuestionView{}, fmt.Errorf("fetch questions: %w", err)
	}

	s.randMu.Lock()
	session, err := StartSession(pool, SessionConfig{
		RequestedCount: req.QuestionCount,
		TimerDuration:  req.TimerDuration,
		CategoryID:     req.CategoryID,
		CategoryName:   req.CategoryName,
		Difficulty:     req.Difficulty,
	}, s.rng, s.now)
	s.randMu.Unlock()
	if err != nil {
		return domain.QuestionView{}, err
	}

	if err := s.sessions.SetQuiz(ctx, sessionID, *session); err != nil {
		return domain.QuestionView{}, fmt.Errorf("store session: %w", err)
	}
	return questionView(session, nil), nil
}

// CurrentQuestion returns the view model for the question at the cursor.
func (s *QuizService) CurrentQuestion(ctx context.Context, sessionID string) (domain.QuestionView, error) {
	session, ok, err := s.sessions.Quiz(ctx, sessionID)
	if err != nil {
		return domain.QuestionView{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.QuestionView{}, domain.ErrSessionNotFound
	}
	if _, err := CurrentQuestion(&session); err != nil {
		return domain.QuestionView{}, err
	}
	return questionView(&session, nil), nil
}

// SubmitQuizAnswer records one answer against the active session and reports
// whether the quiz is now complete.
func (s *QuizService) SubmitQuizAnswer(ctx context.Context, sessionID, selectedLabel string, timeUp bool) (domain.AnswerRecord, bool, error) {
	session, ok, err := s.sessions.Quiz(ctx, sessionID)
	if err != nil {
		return domain.AnswerRecord{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.AnswerRecord{}, false, domain.ErrNoActiveQuestion
	}

	record, err := SubmitAnswer(&session, selectedLabel, timeUp)
	if err != nil {
		return domain.AnswerRecord{}, false, err
	}
	if err := s.sessions.SetQuiz(ctx, sessionID, session); err != nil {
		return domain.AnswerRecord{}, false, fmt.Errorf("store session: %w", err)
	}
	return record, session.Complete(), nil
}

// FinishQuiz finalizes the completed session, appends the score to the
// user's history, and discards the session. A history write failure is
// surfaced as ErrHistoryPersist but the computed result is still returned;
// the user sees their score even when saving failed.
func (s *QuizService) FinishQuiz(ctx context.Context, sessionID, userID string) (domain.QuizResult, error) {
	session, ok, err := s.sessions.Quiz(ctx, sessionID)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.QuizResult{}, domain.ErrSessionNotFound
	}

	result, err := Finalize(&session)
	if err != nil {
		return domain.QuizResult{}, err
	}

	// The session is terminal from here on; clear the slot so it can never
	// be resumed or double-counted.
	if err := s.sessions.ClearQuiz(ctx, sessionID); err != nil {
		log.Printf("clear session %s: %v", sessionID, err)
	}

	record := domain.ScoreRecord{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CategoryID:     session.CategoryID,
		CategoryName:   session.CategoryName,
		Difficulty:     session.Difficulty,
		PlayedAt:       s.now(),
	}
	if err := s.history.Append(ctx, userID, record); err != nil {
		return result, fmt.Errorf("%w: %v", domain.ErrHistoryPersist, err)
	}
	return result, nil
}

// AbandonQuiz drops any active session for the session ID (logout, restart).
func (s *QuizService) AbandonQuiz(ctx context.Context, sessionID string) error {
	return s.sessions.ClearQuiz(ctx, sessionID)
}

// Scores returns the user's quiz history, most recent first.
func (s *QuizService) Scores(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.history.History(ctx, userID)
}

// Leaderboard returns the top players by accumulated score.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.history.TopScores(ctx, limit)
}

// Categories lists the quiz categories available at setup time.
func (s *QuizService) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.categories == nil {
		return nil, nil
	}
	return s.categories.Categories(ctx)
}

func questionView(session *domain.QuizSession, feedback *domain.AnswerRecord) domain.QuestionView {
	question := session.Questions[session.CurrentIndex]
	options := make(map[string]string, len(question.Options))
	for label, text := range question.Options {
		options[label] = text
	}
	return domain.QuestionView{
		QuestionID:     question.ID,
		Text:           question.Text,
		Options:        options,
		QuestionNumber: session.CurrentIndex + 1,
		TotalQuestions: session.TotalQuestions,
		TimerDuration:  session.TimerDuration,
		Feedback:       feedback,
	}
}

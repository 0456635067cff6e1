package domain

import "time"

// OptionLabels is the fixed display order for the four answer options.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is a normalized multiple-choice question. Options always holds
// exactly four entries keyed by A-D, and Options[CorrectLabel] is the
// semantically correct answer text.
type Question struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Options      map[string]string `json:"options"`
	CorrectLabel string            `json:"correctLabel"`
}

// LocalQuestion is the raw shape of an entry in the local question bank file.
type LocalQuestion struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	A        string `json:"A"`
	B        string `json:"B"`
	C        string `json:"C"`
	D        string `json:"D"`
	Answer   string `json:"answer"`
}

// TriviaQuestion is the raw shape returned by the remote trivia API.
type TriviaQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// AnswerRecord is an immutable log entry for one submitted question.
// SelectedLabel and SelectedText are blank when the answer timed out,
// even if a label was transmitted alongside the timeout flag.
type AnswerRecord struct {
	QuestionID    string `json:"questionId"`
	QuestionText  string `json:"questionText"`
	SelectedLabel string `json:"selectedLabel"`
	SelectedText  string `json:"selectedText"`
	CorrectLabel  string `json:"correctLabel"`
	CorrectText   string `json:"correctText"`
	IsCorrect     bool   `json:"isCorrect"`
	IsTimeUp      bool   `json:"isTimeUp"`
}

// QuizSession is one user's active play-through. It is serializable so the
// session container can round-trip it through Redis between requests.
// Exclusively owned by the request handling the owning session ID; all
// mutation happens through the app-package state machine.
type QuizSession struct {
	Questions      []Question     `json:"questions"`
	CurrentIndex   int            `json:"currentIndex"`
	Score          int            `json:"score"`
	AnswerLog      []AnswerRecord `json:"answerLog"`
	TimerDuration  int            `json:"timerDuration"`
	TotalQuestions int            `json:"totalQuestions"`
	CategoryID     int            `json:"categoryId,omitempty"`
	CategoryName   string         `json:"categoryName,omitempty"`
	Difficulty     string         `json:"difficulty,omitempty"`
	StartedAt      time.Time      `json:"startedAt"`
	Finalized      bool           `json:"finalized"`
}

// Complete reports whether every question has been answered.
func (s *QuizSession) Complete() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// QuizResult is the final outcome of a completed session.
type QuizResult struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	CategoryName   string         `json:"categoryName,omitempty"`
	Difficulty     string         `json:"difficulty,omitempty"`
	AnswerLog      []AnswerRecord `json:"answerLog"`
}

// ScoreRecord is the persistence request handed to the history store when a
// quiz finishes.
type ScoreRecord struct {
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CategoryID     int       `json:"categoryId,omitempty"`
	CategoryName   string    `json:"categoryName,omitempty"`
	Difficulty     string    `json:"difficulty,omitempty"`
	PlayedAt       time.Time `json:"playedAt"`
}

// Category is a trivia category offered at quiz setup.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is a registered player.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	TotalScore   int       `json:"totalScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionIdentity is the logged-in user bound to a browser session ID.
type SessionIdentity struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// LeaderboardEntry is one row of the accumulated-score leaderboard.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	TotalScore int    `json:"totalScore"`
}

// QuestionView is what the presentation layer receives for the current
// question; it never exposes the correct label.
type QuestionView struct {
	QuestionID     string            `json:"questionId"`
	Text           string            `json:"text"`
	Options        map[string]string `json:"options"`
	QuestionNumber int               `json:"questionNumber"`
	TotalQuestions int               `json:"totalQuestions"`
	TimerDuration  int               `json:"timerDuration"`
	Feedback       *AnswerRecord     `json:"feedback,omitempty"`
}

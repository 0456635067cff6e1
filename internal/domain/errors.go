package domain

import "errors"

var (
	// ErrNoQuestionsAvailable is returned by Start when the question source
	// yields an empty pool; no session is created in that case.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrMalformedQuestion marks a raw question that cannot be normalized
	// (missing options or an answer key that resolves to no option).
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrNoActiveQuestion is returned when an answer is submitted with no
	// session or after the last question has been answered.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrQuizIncomplete is returned when Finalize is invoked before every
	// question has been answered.
	ErrQuizIncomplete = errors.New("quiz incomplete")
	// ErrSessionFinalized is returned when an operation is invoked on a
	// session that has already been finalized.
	ErrSessionFinalized = errors.New("quiz session already finalized")
	// ErrHistoryPersist wraps a history store failure; the computed result
	// is still returned to the caller alongside it.
	ErrHistoryPersist = errors.New("failed to persist quiz history")
	// ErrSessionNotFound is returned when no quiz session exists for a
	// session identifier.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrUserNotFound indicates an unknown user identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned on signup with a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

package memory

import (
	"context"
	"sync"

	"quizblox-service/internal/domain"
)

// SessionStore is an in-memory session container: one slot per session ID
// for the active quiz, one for the logged-in identity. Values are stored by
// copy so callers never share mutable state through the store.
type SessionStore struct {
	mu         sync.RWMutex
	quizzes    map[string]domain.QuizSession
	identities map[string]domain.SessionIdentity
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		quizzes:    make(map[string]domain.QuizSession),
		identities: make(map[string]domain.SessionIdentity),
	}
}

func (s *SessionStore) Quiz(_ context.Context, sessionID string) (domain.QuizSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.quizzes[sessionID]
	return session, ok, nil
}

func (s *SessionStore) SetQuiz(_ context.Context, sessionID string, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[sessionID] = session
	return nil
}

func (s *SessionStore) ClearQuiz(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, sessionID)
	return nil
}

func (s *SessionStore) Identity(_ context.Context, sessionID string) (domain.SessionIdentity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[sessionID]
	return identity, ok, nil
}

func (s *SessionStore) SetIdentity(_ context.Context, sessionID string, identity domain.SessionIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[sessionID] = identity
	return nil
}

func (s *SessionStore) ClearIdentity(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, sessionID)
	return nil
}

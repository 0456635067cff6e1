package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"quizblox-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.User
	byName map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[string]domain.User),
		byName: make(map[string]string),
	}
}

func (s *UserStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	user.ID = uuid.NewString()
	s.byID[user.ID] = user
	s.byName[user.Username] = user.ID
	return user, nil
}

func (s *UserStore) UserByName(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *UserStore) UserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) UpdateProfilePic(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ProfilePic = url
	s.byID[id] = user
	return nil
}

// addScore is used by the history store to keep the accumulated total in
// step with appended records.
func (s *UserStore) addScore(id string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		user.TotalScore += score
		s.byID[id] = user
	}
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizblox-service/internal/domain"
)

// SessionStore keeps quiz state and login identities in Redis, one JSON
// value per session ID with a sliding TTL. Sessions survive process
// restarts and are shared across instances.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Quiz(ctx context.Context, sessionID string) (domain.QuizSession, bool, error) {
	var session domain.QuizSession
	ok, err := s.get(ctx, s.quizKey(sessionID), &session)
	return session, ok, err
}

func (s *SessionStore) SetQuiz(ctx context.Context, sessionID string, session domain.QuizSession) error {
	return s.set(ctx, s.quizKey(sessionID), session)
}

func (s *SessionStore) ClearQuiz(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.quizKey(sessionID)).Err()
}

func (s *SessionStore) Identity(ctx context.Context, sessionID string) (domain.SessionIdentity, bool, error) {
	var identity domain.SessionIdentity
	ok, err := s.get(ctx, s.identityKey(sessionID), &identity)
	return identity, ok, err
}

func (s *SessionStore) SetIdentity(ctx context.Context, sessionID string, identity domain.SessionIdentity) error {
	return s.set(ctx, s.identityKey(sessionID), identity)
}

func (s *SessionStore) ClearIdentity(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.identityKey(sessionID)).Err()
}

func (s *SessionStore) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	// Refresh the inactivity window on every read.
	_ = s.client.Expire(ctx, key, s.ttl).Err()
	return true, nil
}

func (s *SessionStore) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) quizKey(sessionID string) string {
	return "quiz:session:" + sessionID
}

func (s *SessionStore) identityKey(sessionID string) string {
	return "auth:session:" + sessionID
}

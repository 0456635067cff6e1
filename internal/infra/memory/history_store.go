package memory

import (
	"context"
	"sort"
	"sync"

	"quizblox-service/internal/domain"
)

// HistoryStore keeps per-user score records in memory. It pairs with a
// UserStore to maintain accumulated totals for the leaderboard.
type HistoryStore struct {
	users *UserStore

	mu      sync.RWMutex
	records map[string][]domain.ScoreRecord
}

func NewHistoryStore(users *UserStore) *HistoryStore {
	return &HistoryStore{
		users:   users,
		records: make(map[string][]domain.ScoreRecord),
	}
}

func (s *HistoryStore) Append(_ context.Context, userID string, record domain.ScoreRecord) error {
	s.mu.Lock()
	s.records[userID] = append(s.records[userID], record)
	s.mu.Unlock()
	s.users.addScore(userID, record.Score)
	return nil
}

func (s *HistoryStore) History(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ScoreRecord, len(s.records[userID]))
	copy(records, s.records[userID])
	sort.Slice(records, func(i, j int) bool {
		return records[i].PlayedAt.After(records[j].PlayedAt)
	})
	return records, nil
}

func (s *HistoryStore) TopScores(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.users.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.users.byID))
	for _, user := range s.users.byID {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:     user.ID,
			Username:   user.Username,
			TotalScore: user.TotalScore,
		})
	}
	s.users.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

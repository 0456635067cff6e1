package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizblox-service/internal/domain"
)

// HistoryStore persists finished quizzes in the quiz_history table and keeps
// users.total_score in step, in one transaction per append.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) Append(ctx context.Context, userID string, record domain.ScoreRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin history append: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quiz_history (user_id, score, total_questions, category_id, category_name, difficulty, played_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, record.Score, record.TotalQuestions, record.CategoryID, record.CategoryName, record.Difficulty, record.PlayedAt)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET total_score = total_score + $1 WHERE id = $2`,
		record.Score, userID)
	if err != nil {
		return fmt.Errorf("accumulate score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit history append: %w", err)
	}
	return nil
}

func (s *HistoryStore) History(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT score, total_questions, category_id, category_name, difficulty, played_at
		 FROM quiz_history WHERE user_id = $1 ORDER BY played_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var record domain.ScoreRecord
		if err := rows.Scan(&record.Score, &record.TotalQuestions, &record.CategoryID,
			&record.CategoryName, &record.Difficulty, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *HistoryStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, total_score FROM users
		 ORDER BY total_score DESC, username ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.TotalScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

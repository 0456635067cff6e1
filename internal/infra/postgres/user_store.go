package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizblox-service/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// UserStore is the Postgres implementation of app.UserStore.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, profile_pic, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Username, user.PasswordHash, user.ProfilePic, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) UserByName(ctx context.Context, username string) (domain.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, selectUser+` WHERE username = $1`, username))
}

func (s *UserStore) UserByID(ctx context.Context, id string) (domain.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
}

func (s *UserStore) UpdateProfilePic(ctx context.Context, id, url string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET profile_pic = $1 WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("update profile pic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

const selectUser = `SELECT id, username, password_hash, profile_pic, total_score, created_at FROM users`

func (s *UserStore) scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.ProfilePic, &user.TotalScore, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

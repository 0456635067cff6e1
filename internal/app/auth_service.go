package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizblox-service/internal/domain"
)

// UserStore abstracts the user identity backend (Postgres in production,
// in-memory for tests and dev).
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UserByName(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) error
}

// AuthService implements signup, login, and profile management.
type AuthService struct {
	users UserStore
	now   func() time.Time
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

// SignUp registers a new user with a bcrypt-hashed password and a default
// profile picture derived from the username.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (domain.User, error) {
	if username == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: string(hash),
		ProfilePic:   ProfilePicURL(username),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and returns the user. Unknown usernames and
// wrong passwords are deliberately indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.UserByName(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the stored user record.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.UserByID(ctx, userID)
}

// UpdateProfilePic swaps the user's avatar to one derived from the given
// name and returns the new URL.
func (s *AuthService) UpdateProfilePic(ctx context.Context, userID, picName string) (string, error) {
	if picName == "" {
		return "", fmt.Errorf("pic name required")
	}
	url := ProfilePicURL(picName)
	if err := s.users.UpdateProfilePic(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ProfilePicURL builds the avatar URL used for new and updated profiles.
func ProfilePicURL(name string) string {
	return "https://minotar.net/bust/" + name + "/100.png"
}

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/models"
	"blog/internal/storage"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrNoSession     = errors.New("session not found")
)

// ----------------------------
// Context helpers (for middleware and handlers)
// ----------------------------

type ctxKeyUser struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, ok && u != nil
}

// Service handles registration, login and session validation against
// whichever store backs the application.
type Service struct {
	Store    storage.Store
	Lifetime time.Duration
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.Store.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, ErrUsernameTaken
	}
	return u, err
}

// Login verifies credentials and opens a fresh session, dropping any
// session the user held before.
func (s *Service) Login(ctx context.Context, username, password string) (string, int64, error) {
	username = strings.TrimSpace(username)

	u, err := s.Store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", 0, ErrInvalidLogin
	}
	if err != nil {
		return "", 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", 0, ErrInvalidLogin
	}

	if err := s.Store.DeleteUserSessions(ctx, u.ID); err != nil {
		return "", 0, err
	}

	sid := uuid.NewString()
	err = s.Store.CreateSession(ctx, &models.Session{
		ID:        sid,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(s.Lifetime),
	})
	if err != nil {
		return "", 0, err
	}
	return sid, u.ID, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	return s.Store.DeleteSession(ctx, sid)
}

// UserFromSession resolves a session cookie value to its user. Expired
// sessions are deleted and treated as absent.
func (s *Service) UserFromSession(ctx context.Context, sid string) (*models.User, error) {
	sess, err := s.Store.GetSession(ctx, sid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if !sess.ExpiresAt.After(time.Now()) {
		_ = s.Store.DeleteSession(ctx, sid)
		return nil, ErrNoSession
	}

	return s.Store.GetUserByID(ctx, sess.UserID)
}

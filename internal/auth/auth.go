// Package auth issues and resolves opaque session tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/controlai/controlai/internal/apperror"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/user"
	"github.com/controlai/controlai/internal/util"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	tokenLength       = 32
)

type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	storage storage.Storage
	users   *user.Service
	ttl     time.Duration
	logger  *logger.Logger
}

// NewService returns a Service issuing tokens valid for ttl, or
// DefaultSessionTTL when ttl is not positive.
func NewService(storage storage.Storage, users *user.Service, ttl time.Duration, logger *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &Service{
		storage: storage,
		users:   users,
		ttl:     ttl,
		logger:  logger,
	}
}

// SignUp creates the account and signs it in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (Token, user.Profile, error) {
	profile, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		return Token{}, user.Profile{}, err
	}

	token, err := s.issue(ctx, profile.ID)
	if err != nil {
		return Token{}, user.Profile{}, err
	}

	return token, profile, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Token, error) {
	profile, err := s.users.Verify(ctx, email, password)
	if err != nil {
		return Token{}, err
	}

	return s.issue(ctx, profile.ID)
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.storage.DeleteSession(ctx, token); err != nil {
		return apperror.FromStorage("failed to sign out", err)
	}
	return nil
}

// Authenticate resolves a token to the id of its user.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperror.Unauthorized("authentication required")
	}

	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			return 0, apperror.Unauthorized("invalid or expired token")
		}
		return 0, apperror.FromStorage("failed to get session", err)
	}

	return session.UserID(), nil
}

// PurgeExpired deletes expired sessions and returns how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, apperror.FromStorage("failed to purge sessions", err)
	}

	if deleted > 0 {
		s.logger.Info("Purged expired sessions", "count", deleted)
	}

	return deleted, nil
}

// RunSweeper calls PurgeExpired every interval until ctx is done. Failures
// are logged and the sweeper keeps going.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Session sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) issue(ctx context.Context, userID int64) (Token, error) {
	value, err := util.GenerateRandomID(tokenLength)
	if err != nil {
		return Token{}, apperror.Internal("failed to generate token", err)
	}

	expiresAt := time.Now().Add(s.ttl)
	if _, err = s.storage.CreateSession(ctx, userID, value, expiresAt); err != nil {
		return Token{}, apperror.FromStorage("failed to create session", err)
	}

	return Token{Value: value, ExpiresAt: expiresAt.UTC()}, nil
}

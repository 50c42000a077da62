// Package user creates and looks up accounts.
package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/controlai/controlai/internal/apperror"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
)

const MinPasswordLength = 8

// Profile is a user without the password hash.
type Profile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func NewProfile(u storage.User) Profile {
	return Profile{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt().UTC().Format(time.RFC3339),
	}
}

type Service struct {
	storage storage.Storage
	logger  *logger.Logger
	cost    int
}

func NewService(storage storage.Storage, logger *logger.Logger) *Service {
	return &Service{storage: storage, logger: logger, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost, tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) Create(ctx context.Context, name, email, password string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return Profile{}, apperror.Invalid("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Profile{}, apperror.Invalid("email is invalid")
	}
	if len(password) < MinPasswordLength {
		return Profile{}, apperror.Invalid("password must be at least 8 characters long")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Profile{}, apperror.Internal("failed to hash password", err)
	}

	u, err := s.storage.CreateUser(ctx, name, email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return Profile{}, apperror.Invalid("email is already registered")
		}
		return Profile{}, apperror.FromStorage("failed to create user", err)
	}

	s.logger.Info("User created", "user_id", u.ID())

	return NewProfile(u), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Profile, error) {
	u, err := s.storage.GetUserByID(ctx, id)
	if err != nil {
		return Profile{}, apperror.FromStorage("user not found", err)
	}
	return NewProfile(u), nil
}

// Verify returns the user matching email and password. Unknown emails and
// wrong passwords give the same error.
func (s *Service) Verify(ctx context.Context, email, password string) (Profile, error) {
	u, err := s.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			return Profile{}, apperror.Unauthorized("invalid email or password")
		}
		return Profile{}, apperror.FromStorage("failed to get user", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash()), []byte(password)); err != nil {
		return Profile{}, apperror.Unauthorized("invalid email or password")
	}

	return NewProfile(u), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

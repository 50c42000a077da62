package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/controlai/controlai/internal/logger"
)

type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "record not found"
}

// InconsistencyError reports an aggregate row that must exist but does not.
type InconsistencyError struct {
	Table  string
	UserID int64
	Year   int
	Month  int
	Day    int
}

func (e *InconsistencyError) Error() string {
	if e.Day > 0 {
		return fmt.Sprintf("missing %s row for user %d on %04d-%02d-%02d", e.Table, e.UserID, e.Year, e.Month, e.Day)
	}
	return fmt.Sprintf("missing %s row for user %d on %04d-%02d", e.Table, e.UserID, e.Year, e.Month)
}

var (
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
	// ErrBusy is returned when the database aborted the operation because of a
	// concurrent writer. The operation can be retried.
	ErrBusy = errors.New("database is busy")
	// ErrCategoryInUse is returned when deleting a category still referenced by expenses.
	ErrCategoryInUse = errors.New("category has expenses")
)

type User interface {
	ID() int64
	Name() string
	Email() string
	PasswordHash() string
	CreatedAt() time.Time
}

type user struct {
	id           int64
	name         string
	email        string
	passwordHash string
	createdAt    time.Time
}

func NewUser(id int64, name, email, passwordHash string, createdAt time.Time) User {
	return &user{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		createdAt:    createdAt,
	}
}

func (u *user) ID() int64            { return u.id }
func (u *user) Name() string         { return u.name }
func (u *user) Email() string        { return u.email }
func (u *user) PasswordHash() string { return u.passwordHash }
func (u *user) CreatedAt() time.Time { return u.createdAt }

type Session interface {
	ID() string
	UserID() int64
	ExpiresAt() time.Time
	CreatedAt() time.Time
}

type session struct {
	id        string
	userID    int64
	expiresAt time.Time
	createdAt time.Time
}

func NewSession(id string, userID int64, expiresAt, createdAt time.Time) Session {
	return &session{
		id:        id,
		userID:    userID,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

func (s *session) ID() string           { return s.id }
func (s *session) UserID() int64        { return s.userID }
func (s *session) ExpiresAt() time.Time { return s.expiresAt }
func (s *session) CreatedAt() time.Time { return s.createdAt }

type Category interface {
	ID() int64
	Name() string
	Icon() string
	UserID() int64
	CreatedAt() time.Time
}

type category struct {
	id        int64
	name      string
	icon      string
	userID    int64
	createdAt time.Time
}

func NewCategory(id int64, name, icon string, userID int64, createdAt time.Time) Category {
	return category{
		id:        id,
		name:      name,
		icon:      icon,
		userID:    userID,
		createdAt: createdAt,
	}
}

func (c category) ID() int64            { return c.id }
func (c category) Name() string         { return c.name }
func (c category) Icon() string         { return c.icon }
func (c category) UserID() int64        { return c.userID }
func (c category) CreatedAt() time.Time { return c.createdAt }

// Expense amounts are positive counts of minor currency units.
type Expense interface {
	ID() int64
	Amount() int64
	Description() string
	Date() time.Time
	CategoryID() int64
	UserID() int64
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

type expense struct {
	id          int64
	amount      int64
	description string
	date        time.Time
	categoryID  int64
	userID      int64
	createdAt   time.Time
	updatedAt   time.Time
}

func NewExpense(
	id int64,
	amount int64,
	description string,
	date time.Time,
	categoryID, userID int64,
	createdAt, updatedAt time.Time,
) Expense {
	return &expense{
		id:          id,
		amount:      amount,
		description: description,
		date:        date,
		categoryID:  categoryID,
		userID:      userID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (e *expense) ID() int64            { return e.id }
func (e *expense) Amount() int64        { return e.amount }
func (e *expense) Description() string  { return e.description }
func (e *expense) Date() time.Time      { return e.date }
func (e *expense) CategoryID() int64    { return e.categoryID }
func (e *expense) UserID() int64        { return e.userID }
func (e *expense) CreatedAt() time.Time { return e.createdAt }
func (e *expense) UpdatedAt() time.Time { return e.updatedAt }

// CategoryTotal is the sum of a user's expenses in one category, annotated
// with the category's current name and icon.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	CategoryIcon string
	Total        int64
}

// DailyTotal is one month_history row.
type DailyTotal struct {
	Year    int
	Month   int
	Day     int
	Expense int64
}

// MonthlyTotal is one year_history row.
type MonthlyTotal struct {
	Year    int
	Month   int
	Expense int64
}

// Period is a calendar month with at least one aggregate row.
type Period struct {
	Year  int
	Month int
}

// Bucket returns the aggregate keys of t, taken from its UTC calendar date.
func Bucket(t time.Time) (int, int, int) {
	utc := t.UTC()
	return utc.Year(), int(utc.Month()), utc.Day()
}

type Storage interface {
	// Migrations
	ApplyMigrations(ctx context.Context, logger *logger.Logger) error

	// Users
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// Sessions
	CreateSession(ctx context.Context, userID int64, sessionID string, expiresAt time.Time) (Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Categories
	CreateCategory(ctx context.Context, userID int64, name, icon string) (Category, error)
	GetCategory(ctx context.Context, userID, categoryID int64) (Category, error)
	GetCategoryByName(ctx context.Context, userID int64, name string) (Category, error)
	GetCategories(ctx context.Context, userID int64) ([]Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID int64, name, icon string) (Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID int64) error

	// Expenses. InsertExpense and DeleteExpense keep month_history and
	// year_history in sync inside the same transaction.
	InsertExpense(ctx context.Context, expense Expense) (Expense, error)
	GetExpense(ctx context.Context, userID, expenseID int64) (Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID int64) (Expense, error)
	GetExpensesInRange(ctx context.Context, userID int64, from, to time.Time) ([]Expense, error)
	TotalInRange(ctx context.Context, userID int64, from, to time.Time) (int64, error)
	TotalsPerCategory(ctx context.Context, userID int64, from, to time.Time) ([]CategoryTotal, error)

	// Aggregates
	GetMonthHistory(ctx context.Context, userID int64, year, month int) ([]DailyTotal, error)
	GetYearHistory(ctx context.Context, userID int64, year int) ([]MonthlyTotal, error)
	GetHistoryPeriods(ctx context.Context, userID int64) ([]Period, error)

	// Resource managment
	Close() error
}

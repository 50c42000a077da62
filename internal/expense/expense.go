// Package expense records and reverses expenses and answers the range and
// history queries built on top of them.
package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/controlai/controlai/internal/apperror"
	"github.com/controlai/controlai/internal/events"
	"github.com/controlai/controlai/internal/history"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
)

const (
	TimeframeYear  = "year"
	TimeframeMonth = "month"

	maxYear = 9999
)

type Service struct {
	storage   storage.Storage
	publisher events.Publisher
	logger    *logger.Logger
}

// NewService returns a Service. A nil publisher disables events.
func NewService(storage storage.Storage, publisher events.Publisher, logger *logger.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &Service{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

type CreateInput struct {
	Amount      int64
	Description string
	Date        time.Time
	CategoryID  int64
}

// Create stores the expense together with its history buckets.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (storage.Expense, error) {
	description := strings.TrimSpace(input.Description)

	switch {
	case input.Amount <= 0:
		return nil, apperror.Invalid("amount must be greater than zero")
	case description == "":
		return nil, apperror.Invalid("description is required")
	case input.Date.IsZero():
		return nil, apperror.Invalid("date is required")
	case input.CategoryID <= 0:
		return nil, apperror.Invalid("category is required")
	}

	expense, err := s.storage.InsertExpense(ctx, storage.NewExpense(
		0,
		input.Amount,
		description,
		input.Date.UTC(),
		input.CategoryID,
		userID,
		time.Time{},
		time.Time{},
	))
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperror.Invalid("category does not belong to you")
		}
		return nil, apperror.FromStorage("failed to create expense", err)
	}

	s.logger.Info("Expense recorded", "user_id", userID, "expense_id", expense.ID(), "amount", expense.Amount())
	s.publish(ctx, events.ExpenseRecorded, expense)

	return expense, nil
}

// Delete removes the expense and subtracts it from its history buckets.
func (s *Service) Delete(ctx context.Context, userID, expenseID int64) error {
	expense, err := s.storage.DeleteExpense(ctx, userID, expenseID)
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			return apperror.Invalid("expense does not belong to you")
		}
		return apperror.FromStorage("failed to delete expense", err)
	}

	s.logger.Info("Expense reversed", "user_id", userID, "expense_id", expense.ID(), "amount", expense.Amount())
	s.publish(ctx, events.ExpenseReversed, expense)

	return nil
}

// Total sums the expenses dated within [from, to].
func (s *Service) Total(ctx context.Context, userID int64, from, to time.Time) (int64, error) {
	if err := validateRange(from, to); err != nil {
		return 0, err
	}

	total, err := s.storage.TotalInRange(ctx, userID, from, to)
	if err != nil {
		return 0, apperror.FromStorage("failed to compute total", err)
	}

	return total, nil
}

// PerCategory sums the expenses within [from, to] by category, biggest first.
func (s *Service) PerCategory(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]storage.CategoryTotal, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	totals, err := s.storage.TotalsPerCategory(ctx, userID, from, to)
	if err != nil {
		return nil, apperror.FromStorage("failed to compute totals per category", err)
	}

	return totals, nil
}

// List returns the expenses within [from, to], newest first.
func (s *Service) List(ctx context.Context, userID int64, from, to time.Time) ([]storage.Expense, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	expenses, err := s.storage.GetExpensesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, apperror.FromStorage("failed to list expenses", err)
	}

	return expenses, nil
}

func (s *Service) YearSeries(ctx context.Context, userID int64, year int) ([]history.Point, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	totals, err := s.storage.GetYearHistory(ctx, userID, year)
	if err != nil {
		return nil, apperror.FromStorage("failed to read year history", err)
	}

	return history.Year(year, totals), nil
}

func (s *Service) MonthSeries(ctx context.Context, userID int64, year, month int) ([]history.Point, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, apperror.Invalid("month must be between 1 and 12")
	}

	totals, err := s.storage.GetMonthHistory(ctx, userID, year, month)
	if err != nil {
		return nil, apperror.FromStorage("failed to read month history", err)
	}

	return history.Month(year, month, totals), nil
}

// History dispatches to YearSeries or MonthSeries by timeframe. month is only
// read for the month timeframe.
func (s *Service) History(
	ctx context.Context,
	userID int64,
	year int,
	timeframe string,
	month int,
) ([]history.Point, error) {
	switch timeframe {
	case TimeframeYear:
		return s.YearSeries(ctx, userID, year)
	case TimeframeMonth:
		return s.MonthSeries(ctx, userID, year, month)
	default:
		return nil, apperror.Invalid("timeframe must be month or year")
	}
}

// Periods lists the months with recorded activity, newest first.
func (s *Service) Periods(ctx context.Context, userID int64) ([]storage.Period, error) {
	periods, err := s.storage.GetHistoryPeriods(ctx, userID)
	if err != nil {
		return nil, apperror.FromStorage("failed to list history periods", err)
	}
	return periods, nil
}

func (s *Service) publish(ctx context.Context, eventType string, expense storage.Expense) {
	event := events.NewExpenseEvent(eventType, expense.ID(), expense.UserID(), expense.Amount(), expense.Date())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish expense event",
			"type", eventType,
			"expense_id", expense.ID(),
			"error", err,
		)
	}
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.Invalid("from and to dates are required")
	}
	return nil
}

func validateYear(year int) error {
	if year < 1 || year > maxYear {
		return apperror.Invalid("year is out of range")
	}
	return nil
}

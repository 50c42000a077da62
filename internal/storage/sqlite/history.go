package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/controlai/controlai/internal/storage"
)

const (
	monthHistoryTable = "month_history"
	yearHistoryTable  = "year_history"
)

// addToHistory creates the day and month buckets of date or increments them by amount.
func addToHistory(ctx context.Context, tx *sql.Tx, userID int64, date time.Time, amount int64) error {
	year, month, day := storage.Bucket(date)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO month_history (user_id, year, month, day, expense)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month, day) DO UPDATE SET expense = expense + excluded.expense`,
		userID, year, month, day, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to update month history: %w", classify(err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO year_history (user_id, year, month, expense)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET expense = expense + excluded.expense`,
		userID, year, month, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to update year history: %w", classify(err))
	}

	return nil
}

// subtractFromHistory decrements the day and month buckets of date by amount.
// Buckets are never deleted, a bucket can go down to zero and stay.
func subtractFromHistory(ctx context.Context, tx *sql.Tx, userID int64, date time.Time, amount int64) error {
	year, month, day := storage.Bucket(date)

	result, err := tx.ExecContext(ctx, `
		UPDATE month_history SET expense = expense - ?
		WHERE user_id = ? AND year = ? AND month = ? AND day = ?`,
		amount, userID, year, month, day,
	)
	inconsistent := &storage.InconsistencyError{Table: monthHistoryTable, UserID: userID, Year: year, Month: month, Day: day}
	if err = checkDecrement(result, err, inconsistent); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE year_history SET expense = expense - ?
		WHERE user_id = ? AND year = ? AND month = ?`,
		amount, userID, year, month,
	)
	inconsistent = &storage.InconsistencyError{Table: yearHistoryTable, UserID: userID, Year: year, Month: month}
	return checkDecrement(result, err, inconsistent)
}

// checkDecrement turns a missing bucket, or one that would go negative, into
// the given InconsistencyError.
func checkDecrement(result sql.Result, err error, inconsistent *storage.InconsistencyError) error {
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintCheck) {
			return inconsistent
		}
		return fmt.Errorf("failed to update %s: %w", inconsistent.Table, classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return inconsistent
	}

	return nil
}

// GetMonthHistory returns the non-empty day buckets of a month in day order.
func (s *sqliteStorage) GetMonthHistory(
	ctx context.Context,
	userID int64,
	year, month int,
) ([]storage.DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, SUM(expense)
		FROM month_history
		WHERE user_id = ? AND year = ? AND month = ?
		GROUP BY day
		ORDER BY day ASC`,
		userID, year, month,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	totals := []storage.DailyTotal{}

	for rows.Next() {
		total := storage.DailyTotal{Year: year, Month: month}
		if err = rows.Scan(&total.Day, &total.Expense); err != nil {
			return nil, classify(err)
		}

		totals = append(totals, total)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return totals, nil
}

// GetYearHistory returns the month buckets of a year in month order.
func (s *sqliteStorage) GetYearHistory(ctx context.Context, userID int64, year int) ([]storage.MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT month, SUM(expense)
		FROM year_history
		WHERE user_id = ? AND year = ?
		GROUP BY month
		ORDER BY month ASC`,
		userID, year,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	totals := []storage.MonthlyTotal{}

	for rows.Next() {
		total := storage.MonthlyTotal{Year: year}
		if err = rows.Scan(&total.Month, &total.Expense); err != nil {
			return nil, classify(err)
		}

		totals = append(totals, total)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return totals, nil
}

// GetHistoryPeriods lists every month with a year_history bucket, newest first.
func (s *sqliteStorage) GetHistoryPeriods(ctx context.Context, userID int64) ([]storage.Period, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month
		FROM year_history
		WHERE user_id = ?
		GROUP BY year, month
		ORDER BY year DESC, month DESC`,
		userID,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	periods := []storage.Period{}

	for rows.Next() {
		var period storage.Period
		if err = rows.Scan(&period.Year, &period.Month); err != nil {
			return nil, classify(err)
		}

		periods = append(periods, period)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return periods, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/controlai/controlai/internal/storage"
)

const expenseColumns = "id, amount, description, date, category_id, user_id, created_at, updated_at"

// InsertExpense stores the expense and adds its amount to the matching
// month_history and year_history buckets in a single transaction.
func (s *sqliteStorage) InsertExpense(ctx context.Context, expense storage.Expense) (storage.Expense, error) {
	var inserted storage.Expense

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var owned int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM categories WHERE id = ? AND user_id = ?",
			expense.CategoryID(), expense.UserID(),
		).Scan(&owned)
		if err != nil {
			return classify(err)
		}

		now := time.Now()
		result, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (amount, description, date, category_id, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			expense.Amount(), expense.Description(), expense.Date().Unix(),
			expense.CategoryID(), expense.UserID(), now.Unix(), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", classify(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get expense id: %w", err)
		}

		if err = addToHistory(ctx, tx, expense.UserID(), expense.Date(), expense.Amount()); err != nil {
			return err
		}

		stamp := time.Unix(now.Unix(), 0)
		inserted = storage.NewExpense(
			id,
			expense.Amount(),
			expense.Description(),
			time.Unix(expense.Date().Unix(), 0).UTC(),
			expense.CategoryID(),
			expense.UserID(),
			stamp,
			stamp,
		)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

func (s *sqliteStorage) GetExpense(ctx context.Context, userID, expenseID int64) (storage.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?",
		expenseID, userID,
	)
	return expenseFromRow(row.Scan)
}

// DeleteExpense removes an expense owned by userID and subtracts its amount
// from the matching history buckets in a single transaction. A missing bucket
// aborts the transaction with an InconsistencyError.
func (s *sqliteStorage) DeleteExpense(ctx context.Context, userID, expenseID int64) (storage.Expense, error) {
	var deleted storage.Expense

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?",
			expenseID, userID,
		)

		var err error
		deleted, err = expenseFromRow(row.Scan)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", classify(err))
		}

		return subtractFromHistory(ctx, tx, userID, deleted.Date(), deleted.Amount())
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// GetExpensesInRange returns expenses with from <= date <= to, newest first.
func (s *sqliteStorage) GetExpensesInRange(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]storage.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+` FROM expenses
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date DESC, id DESC`,
		userID, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	expenses := []storage.Expense{}

	for rows.Next() {
		ex, expenseErr := expenseFromRow(rows.Scan)
		if expenseErr != nil {
			return nil, expenseErr
		}

		expenses = append(expenses, ex)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return expenses, nil
}

func (s *sqliteStorage) TotalInRange(ctx context.Context, userID int64, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = ? AND date BETWEEN ? AND ?`,
		userID, from.Unix(), to.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", classify(err))
	}

	return total, nil
}

// TotalsPerCategory joins the current category name and icon, so renames are
// reflected in every later query.
func (s *sqliteStorage) TotalsPerCategory(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]storage.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, SUM(e.amount) AS total
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date BETWEEN ? AND ?
		GROUP BY c.id, c.name, c.icon
		ORDER BY total DESC, c.name ASC`,
		userID, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	totals := []storage.CategoryTotal{}

	for rows.Next() {
		var total storage.CategoryTotal
		if err = rows.Scan(&total.CategoryID, &total.CategoryName, &total.CategoryIcon, &total.Total); err != nil {
			return nil, classify(err)
		}

		totals = append(totals, total)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return totals, nil
}

func expenseFromRow(scan func(dest ...any) error) (storage.Expense, error) {
	var id, amount, date, categoryID, userID, createdAt, updatedAt int64
	var description string

	if err := scan(&id, &amount, &description, &date, &categoryID, &userID, &createdAt, &updatedAt); err != nil {
		return nil, classify(err)
	}

	return storage.NewExpense(
		id,
		amount,
		description,
		time.Unix(date, 0).UTC(),
		categoryID,
		userID,
		time.Unix(createdAt, 0),
		time.Unix(updatedAt, 0),
	), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/controlai/controlai/internal/storage"
)

const categoryColumns = "id, name, icon, user_id, created_at"

func (s *sqliteStorage) CreateCategory(ctx context.Context, userID int64, name, icon string) (storage.Category, error) {
	createdAt := time.Now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO categories(name, icon, user_id, created_at) VALUES(?, ?, ?, ?)",
		name, icon, userID, createdAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return storage.NewCategory(id, name, icon, userID, time.Unix(createdAt.Unix(), 0)), nil
}

func (s *sqliteStorage) GetCategories(ctx context.Context, userID int64) ([]storage.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	categories := []storage.Category{}

	for rows.Next() {
		category, categoryErr := categoryFromRow(rows.Scan)
		if categoryErr != nil {
			return nil, categoryErr
		}

		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return categories, nil
}

// GetCategory returns a NotFoundError both when the category does not exist
// and when it belongs to another user.
func (s *sqliteStorage) GetCategory(ctx context.Context, userID, categoryID int64) (storage.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?",
		categoryID, userID,
	)
	return categoryFromRow(row.Scan)
}

func (s *sqliteStorage) GetCategoryByName(ctx context.Context, userID int64, name string) (storage.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name = ? AND user_id = ?",
		name, userID,
	)
	return categoryFromRow(row.Scan)
}

func (s *sqliteStorage) UpdateCategory(
	ctx context.Context,
	userID, categoryID int64,
	name, icon string,
) (storage.Category, error) {
	var updated storage.Category

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE categories SET name = ?, icon = ? WHERE id = ? AND user_id = ?",
			name, icon, categoryID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update category: %w", classify(err))
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return &storage.NotFoundError{}
		}

		row := tx.QueryRowContext(ctx,
			"SELECT "+categoryColumns+" FROM categories WHERE id = ?",
			categoryID,
		)
		updated, err = categoryFromRow(row.Scan)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteCategory refuses to delete a category that expenses still reference.
func (s *sqliteStorage) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?",
			categoryID, userID,
		)
		if _, err := categoryFromRow(row.Scan); err != nil {
			return err
		}

		var expenses int64
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM expenses WHERE category_id = ?",
			categoryID,
		).Scan(&expenses)
		if err != nil {
			return fmt.Errorf("failed to count category expenses: %w", classify(err))
		}
		if expenses > 0 {
			return storage.ErrCategoryInUse
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", categoryID)
		if err != nil {
			if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
				return storage.ErrCategoryInUse
			}
			return fmt.Errorf("failed to delete category: %w", classify(err))
		}

		return nil
	})
}

func categoryFromRow(scan func(dest ...any) error) (storage.Category, error) {
	var id, userID, createdAt int64
	var name, icon string

	if err := scan(&id, &name, &icon, &userID, &createdAt); err != nil {
		return nil, classify(err)
	}

	return storage.NewCategory(id, name, icon, userID, time.Unix(createdAt, 0)), nil
}

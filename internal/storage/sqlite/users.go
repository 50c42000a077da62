package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/controlai/controlai/internal/storage"
)

func (s *sqliteStorage) CreateUser(ctx context.Context, name, email, passwordHash string) (storage.User, error) {
	createdAt := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, createdAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", classify(err))
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return storage.NewUser(userID, name, email, passwordHash, time.Unix(createdAt.Unix(), 0)), nil
}

func (s *sqliteStorage) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email)

	return userFromRow(row.Scan)
}

func (s *sqliteStorage) GetUserByID(ctx context.Context, id int64) (storage.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id)

	return userFromRow(row.Scan)
}

func userFromRow(scan func(dest ...any) error) (storage.User, error) {
	var id int64
	var name, email, passwordHash string
	var createdAt int64

	if err := scan(&id, &name, &email, &passwordHash, &createdAt); err != nil {
		return nil, classify(err)
	}

	return storage.NewUser(id, name, email, passwordHash, time.Unix(createdAt, 0)), nil
}

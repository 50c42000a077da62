package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	// import sqlite driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/controlai/controlai/internal/config"
	"github.com/controlai/controlai/internal/storage"
)

const memorySource = ":memory:"

type sqliteStorage struct {
	db *sql.DB
}

func New(dbConfig config.DBConfig) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dsn(dbConfig))
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: opens a different database.
	if dbConfig.Source == memorySource {
		db.SetMaxOpenConns(1)
	} else if dbConfig.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}

	if dbConfig.MaxIdleConns > 0 {
		db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}

	if dbConfig.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	if dbConfig.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	}

	ctx := context.Background()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbConfig.WALAutocheckpoint > 0 {
		_, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA wal_autocheckpoint = %d", dbConfig.WALAutocheckpoint))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set wal_autocheckpoint: %w", err)
		}
	}

	if dbConfig.TempStore != "" {
		_, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA temp_store = %s", dbConfig.TempStore))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set temp_store: %w", err)
		}
	}

	return &sqliteStorage{db: db}, nil
}

// dsn turns the per-connection PRAGMAs into go-sqlite3 connection parameters
// so they apply to every connection of the pool, not only the first one.
// Write transactions take the write lock up front (_txlock=immediate) so two
// writers never deadlock upgrading a read lock.
func dsn(dbConfig config.DBConfig) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")

	if dbConfig.BusyTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprintf("%d", dbConfig.BusyTimeout))
	}

	if dbConfig.JournalMode != "" && dbConfig.Source != memorySource {
		params.Set("_journal_mode", dbConfig.JournalMode)
	}

	if dbConfig.Synchronous != "" {
		params.Set("_synchronous", dbConfig.Synchronous)
	}

	if dbConfig.CacheSize != 0 {
		params.Set("_cache_size", fmt.Sprintf("%d", dbConfig.CacheSize))
	}

	separator := "?"
	if strings.Contains(dbConfig.Source, "?") {
		separator = "&"
	}

	return dbConfig.Source + separator + params.Encode()
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (s *sqliteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() {
		_ = tx.Rollback() // Will be no-op if committed
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}

	return nil
}

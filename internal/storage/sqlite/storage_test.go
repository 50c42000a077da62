package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/controlai/controlai/internal/config"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
)

func setupTestStorage(t *testing.T) (storage.Storage, storage.User) {
	t.Helper()
	// Using a tempDir ensure every test gets its own database and it is cleaned after each test
	stor, err := New(config.DBConfig{
		Source:      filepath.Join(t.TempDir(), "test.db"),
		JournalMode: "WAL",
		BusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}

	t.Cleanup(func() {
		if err = stor.Close(); err != nil {
			t.Errorf("Failed to close test storage: %v", err)
		}
	})

	err = stor.ApplyMigrations(context.Background(), logger.New(logger.Config{Output: "discard"}))
	if err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	user, err := stor.CreateUser(context.Background(), "Test User", "test@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return stor, user
}

func TestMigrations(t *testing.T) {
	stor, user := setupTestStorage(t)
	ctx := context.Background()

	// Applying twice is a no-op.
	if err := stor.ApplyMigrations(ctx, logger.New(logger.Config{Output: "discard"})); err != nil {
		t.Fatalf("Failed to re-apply migrations: %v", err)
	}

	if _, err := stor.GetCategories(ctx, user.ID()); err != nil {
		t.Fatalf("Failed to query categories table after migrations: %v", err)
	}

	if _, err := stor.GetMonthHistory(ctx, user.ID(), 2025, 1); err != nil {
		t.Fatalf("Failed to query month_history table after migrations: %v", err)
	}

	if _, err := stor.GetYearHistory(ctx, user.ID(), 2025); err != nil {
		t.Fatalf("Failed to query year_history table after migrations: %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	stor, err := New(config.DBConfig{Source: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create memory storage: %v", err)
	}
	defer stor.Close()

	if err = stor.ApplyMigrations(context.Background(), logger.New(logger.Config{Output: "discard"})); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	if _, err = stor.CreateUser(context.Background(), "Mem", "mem@example.com", "hash"); err != nil {
		t.Fatalf("Failed to create user in memory storage: %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := dsn(config.DBConfig{
		Source:      "data.db",
		JournalMode: "WAL",
		Synchronous: "NORMAL",
		BusyTimeout: 1000,
	})

	for _, want := range []string{"data.db?", "_foreign_keys=on", "_txlock=immediate", "_busy_timeout=1000", "_journal_mode=WAL", "_synchronous=NORMAL"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn() = %q, expected it to contain %q", got, want)
		}
	}

	memory := dsn(config.DBConfig{Source: ":memory:", JournalMode: "WAL"})
	if strings.Contains(memory, "_journal_mode") {
		t.Errorf("memory dsn should not set journal mode, got %q", memory)
	}

	withParams := dsn(config.DBConfig{Source: "file:data.db?mode=rwc"})
	if !strings.HasPrefix(withParams, "file:data.db?mode=rwc&") {
		t.Errorf("dsn() should append to existing parameters, got %q", withParams)
	}
}

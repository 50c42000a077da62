package testutil

import (
	"path/filepath"
	"testing"

	"github.com/controlai/controlai/internal/config"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/storage/sqlite"
)

// SetupTestStorage returns a migrated storage backed by a file in a temp dir
// and a user to own test data.
func SetupTestStorage(t *testing.T, logger *logger.Logger) (storage.Storage, storage.User) {
	t.Helper()

	s, err := sqlite.New(config.DBConfig{
		Source:      filepath.Join(t.TempDir(), "test.db"),
		JournalMode: "WAL",
		BusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}

	t.Cleanup(func() {
		if err = s.Close(); err != nil {
			t.Errorf("Failed to close test storage: %v", err)
		}
	})

	if err = s.ApplyMigrations(t.Context(), logger); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	user, err := s.CreateUser(t.Context(), "Test User", "test@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return s, user
}

// CreateTestUser adds another user with the given email.
func CreateTestUser(t *testing.T, s storage.Storage, email string) storage.User {
	t.Helper()

	user, err := s.CreateUser(t.Context(), "Other User", email, "hash")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	return user
}

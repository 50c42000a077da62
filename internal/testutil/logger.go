package testutil

import (
	"testing"

	"github.com/controlai/controlai/internal/logger"
)

// TestLogger returns a logger that discards everything.
func TestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	return logger.New(logger.Config{
		Level:  logger.LevelDebug,
		Format: logger.FormatText,
		Output: "discard",
	})
}

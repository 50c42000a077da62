package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/util"
)

// SetupAuthToken creates a session for user and sends it as a bearer token.
func SetupAuthToken(
	t *testing.T,
	s storage.Storage,
	req *http.Request,
	user storage.User,
	duration time.Duration,
) string {
	t.Helper()

	const idLength = 32
	token, err := util.GenerateRandomID(idLength)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err = s.CreateSession(t.Context(), user.ID(), token, time.Now().Add(duration)); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return token
}

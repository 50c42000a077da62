package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/controlai/controlai/internal/auth"
	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/testutil"
	"github.com/controlai/controlai/internal/user"
)

// newTestHandler wires every service on top of a fresh test storage.
func newTestHandler(t *testing.T) (http.Handler, storage.Storage, storage.User) {
	t.Helper()

	logger := testutil.TestLogger(t)
	s, u := testutil.SetupTestStorage(t, logger)

	users := user.NewService(s, logger).WithCost(bcrypt.MinCost)
	services := Services{
		Auth:       auth.NewService(s, users, time.Hour, logger),
		Users:      users,
		Categories: category.NewService(s, logger),
		Expenses:   expense.NewService(s, nil, logger),
	}

	return New(services, logger), s, u
}

// doRequest sends body as JSON, authenticated as u when u is not nil.
func doRequest(
	t *testing.T,
	handler http.Handler,
	s storage.Storage,
	u storage.User,
	method, target string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		testutil.SetupAuthToken(t, s, req, u, time.Hour)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.NewDecoder(rr.Body).Decode(&value); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}

	return value
}

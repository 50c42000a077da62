package router

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/controlai/controlai/internal/user"
)

func TestCreateUser(t *testing.T) {
	handler, s, _ := newTestHandler(t)

	rr := doRequest(t, handler, s, nil, http.MethodPost, "/api/users", signUpRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "supersecret",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	profile := decodeBody[user.Profile](t, rr)
	if profile.ID == 0 || profile.Email != "jane@example.com" {
		t.Errorf("Unexpected profile %+v", profile)
	}
}

func TestGetUser(t *testing.T) {
	handler, s, u := newTestHandler(t)

	rr := doRequest(t, handler, s, u, http.MethodGet, "/api/users/me", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if me := decodeBody[user.Profile](t, rr); me.ID != u.ID() {
		t.Errorf("Expected user %d, got %d", u.ID(), me.ID)
	}

	rr = doRequest(t, handler, s, u, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID()), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	rr = doRequest(t, handler, s, u, http.MethodGet, "/api/users/424242", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for an unknown user, got %d", rr.Code)
	}

	rr = doRequest(t, handler, s, u, http.MethodGet, "/api/users/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an invalid id, got %d", rr.Code)
	}
}

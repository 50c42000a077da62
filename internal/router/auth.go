package router

import (
	"net/http"
	"time"

	"github.com/controlai/controlai/internal/user"
)

type authHandler struct {
	router *router
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *user.Profile `json:"user,omitempty"`
}

func (a *authHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/sign-up", a.signUp)
	mux.HandleFunc("POST /api/auth/sign-in", a.signIn)
	mux.HandleFunc("POST /api/auth/sign-out", a.router.authenticated(a.signOut))
	mux.HandleFunc("GET /api/auth/me", a.router.authenticated(a.me))
}

func (a *authHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.router.writeError(w, r, err)
		return
	}

	token, profile, err := a.router.services.Auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.router.writeError(w, r, err)
		return
	}

	a.router.writeJSON(w, http.StatusCreated, tokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      &profile,
	})
}

func (a *authHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.router.writeError(w, r, err)
		return
	}

	token, err := a.router.services.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		a.router.writeError(w, r, err)
		return
	}

	a.router.writeJSON(w, http.StatusOK, tokenResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}

func (a *authHandler) signOut(w http.ResponseWriter, r *http.Request, _ int64) {
	if err := a.router.services.Auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		a.router.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *authHandler) me(w http.ResponseWriter, r *http.Request, userID int64) {
	profile, err := a.router.services.Users.Get(r.Context(), userID)
	if err != nil {
		a.router.writeError(w, r, err)
		return
	}

	a.router.writeJSON(w, http.StatusOK, profile)
}

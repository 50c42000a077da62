package router

import (
	"net/http"
)

type userHandler struct {
	router *router
}

func (u *userHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", u.create)
	mux.HandleFunc("GET /api/users/me", u.router.authenticated(u.me))
	mux.HandleFunc("GET /api/users/{userID}", u.router.authenticated(u.get))
}

func (u *userHandler) create(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		u.router.writeError(w, r, err)
		return
	}

	profile, err := u.router.services.Users.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		u.router.writeError(w, r, err)
		return
	}

	u.router.writeJSON(w, http.StatusCreated, profile)
}

func (u *userHandler) me(w http.ResponseWriter, r *http.Request, userID int64) {
	profile, err := u.router.services.Users.Get(r.Context(), userID)
	if err != nil {
		u.router.writeError(w, r, err)
		return
	}

	u.router.writeJSON(w, http.StatusOK, profile)
}

func (u *userHandler) get(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := pathID(r, "userID")
	if err != nil {
		u.router.writeError(w, r, err)
		return
	}

	profile, err := u.router.services.Users.Get(r.Context(), id)
	if err != nil {
		u.router.writeError(w, r, err)
		return
	}

	u.router.writeJSON(w, http.StatusOK, profile)
}

package router

import (
	"net/http"

	"github.com/controlai/controlai/internal/auth"
	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/user"
)

type Services struct {
	Auth       *auth.Service
	Users      *user.Service
	Categories *category.Service
	Expenses   *expense.Service
}

type router struct {
	services Services
	logger   *logger.Logger
}

type routeHandler interface {
	RegisterRoutes(mux *http.ServeMux)
}

// New returns the JSON API handler. Every route except sign-up, sign-in,
// user creation and health requires a bearer token.
func New(services Services, logger *logger.Logger) http.Handler {
	r := &router{
		services: services,
		logger:   logger,
	}

	mux := http.NewServeMux()

	handlers := []routeHandler{
		&authHandler{router: r},
		&userHandler{router: r},
		&categoryHandler{router: r},
		&expenseHandler{router: r},
	}
	for _, h := range handlers {
		h.RegisterRoutes(mux)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		r.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		r.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return loggingMiddleware(logger, xFrameDenyHeaderMiddleware(mux))
}

package router

import (
	"net/http"
	"time"

	"github.com/controlai/controlai/internal/storage"
)

type categoryHandler struct {
	router *router
}

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

func newCategoryResponse(c storage.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID(),
		Name:      c.Name(),
		Icon:      c.Icon(),
		CreatedAt: c.CreatedAt().UTC(),
	}
}

func (c *categoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/categories", c.router.authenticated(c.create))
	mux.HandleFunc("GET /api/categories", c.router.authenticated(c.list))
	mux.HandleFunc("PATCH /api/categories/{categoryID}", c.router.authenticated(c.update))
	mux.HandleFunc("DELETE /api/categories/{categoryID}", c.router.authenticated(c.delete))
}

func (c *categoryHandler) create(w http.ResponseWriter, r *http.Request, userID int64) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.router.writeError(w, r, err)
		return
	}

	category, err := c.router.services.Categories.Create(r.Context(), userID, req.Name, req.Icon)
	if err != nil {
		c.router.writeError(w, r, err)
		return
	}

	c.router.writeJSON(w, http.StatusCreated, newCategoryResponse(category))
}

func (c *categoryHandler) list(w http.ResponseWriter, r *http.Request, userID int64) {
	categories, err := c.router.services.Categories.List(r.Context(), userID)
	if err != nil {
		c.router.writeError(w, r, err)
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, newCategoryResponse(category))
	}

	c.router.writeJSON(w, http.StatusOK, response)
}

func (c *categoryHandler) update(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r, "categoryID")
	if err != nil {
		c.router.writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err = decodeJSON(w, r, &req); err != nil {
		c.router.writeError(w, r, err)
		return
	}

	category, err := c.router.services.Categories.Update(r.Context(), userID, id, req.Name, req.Icon)
	if err != nil {
		c.router.writeError(w, r, err)
		return
	}

	c.router.writeJSON(w, http.StatusOK, newCategoryResponse(category))
}

func (c *categoryHandler) delete(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r, "categoryID")
	if err != nil {
		c.router.writeError(w, r, err)
		return
	}

	if err = c.router.services.Categories.Delete(r.Context(), userID, id); err != nil {
		c.router.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

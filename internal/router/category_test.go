package router

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/testutil"
)

func TestCreateAndListCategories(t *testing.T) {
	handler, s, u := newTestHandler(t)

	rr := doRequest(t, handler, s, u, http.MethodPost, "/api/categories", categoryRequest{Name: "Food", Icon: "🍕"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	created := decodeBody[categoryResponse](t, rr)
	if created.ID == 0 || created.Name != "Food" || created.Icon != "🍕" {
		t.Errorf("Unexpected category %+v", created)
	}

	rr = doRequest(t, handler, s, u, http.MethodPost, "/api/categories", categoryRequest{Name: "Food", Icon: "🍔"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a duplicate name, got %d", rr.Code)
	}

	rr = doRequest(t, handler, s, u, http.MethodGet, "/api/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	categories := decodeBody[[]categoryResponse](t, rr)
	if len(categories) != 1 || categories[0].ID != created.ID {
		t.Errorf("Unexpected categories %+v", categories)
	}
}

func TestListCategoriesEmpty(t *testing.T) {
	handler, s, u := newTestHandler(t)

	rr := doRequest(t, handler, s, u, http.MethodGet, "/api/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("Expected an empty JSON array, got %q", body)
	}
}

func TestUpdateCategory(t *testing.T) {
	handler, s, u := newTestHandler(t)

	category, err := s.CreateCategory(t.Context(), u.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	target := fmt.Sprintf("/api/categories/%d", category.ID())
	rr := doRequest(t, handler, s, u, http.MethodPatch, target, categoryRequest{Name: "Groceries"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	updated := decodeBody[categoryResponse](t, rr)
	if updated.Name != "Groceries" || updated.Icon != "🍕" {
		t.Errorf("Unexpected category %+v", updated)
	}
}

func TestCategoryOwnership(t *testing.T) {
	handler, s, owner := newTestHandler(t)
	intruder := testutil.CreateTestUser(t, s, "intruder@example.com")

	category, err := s.CreateCategory(t.Context(), owner.ID(), "Rent", "🏠")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	target := fmt.Sprintf("/api/categories/%d", category.ID())

	tests := []struct {
		name   string
		method string
		body   any
	}{
		{"update", http.MethodPatch, categoryRequest{Name: "Mine"}},
		{"delete", http.MethodDelete, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, handler, s, intruder, tt.method, target, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rr.Code)
			}

			body := decodeBody[errorResponse](t, rr)
			if body.Error != "category does not belong to you" {
				t.Errorf("Unexpected error %q", body.Error)
			}
		})
	}

	if _, err = s.GetCategory(t.Context(), owner.ID(), category.ID()); err != nil {
		t.Errorf("Category should be untouched: %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	handler, s, u := newTestHandler(t)

	used, err := s.CreateCategory(t.Context(), u.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	unused, err := s.CreateCategory(t.Context(), u.ID(), "Travel", "✈")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	_, err = s.InsertExpense(t.Context(), storage.NewExpense(0, 100, "Lunch", date, used.ID(), u.ID(), time.Time{}, time.Time{}))
	if err != nil {
		t.Fatalf("Failed to insert expense: %v", err)
	}

	rr := doRequest(t, handler, s, u, http.MethodDelete, fmt.Sprintf("/api/categories/%d", used.ID()), nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 deleting a category in use, got %d", rr.Code)
	}

	rr = doRequest(t, handler, s, u, http.MethodDelete, fmt.Sprintf("/api/categories/%d", unused.ID()), nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, handler, s, u, http.MethodDelete, "/api/categories/not-a-number", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an invalid id, got %d", rr.Code)
	}
}

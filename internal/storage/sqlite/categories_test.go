package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/controlai/controlai/internal/storage"
)

func TestCreateCategory(t *testing.T) {
	s, user := setupTestStorage(t)

	category, err := s.CreateCategory(context.Background(), user.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	if category.ID() == 0 {
		t.Error("Expected category ID to be set")
	}
	if category.Name() != "Food" || category.Icon() != "🍕" {
		t.Errorf("Unexpected category %q %q", category.Name(), category.Icon())
	}
	if category.UserID() != user.ID() {
		t.Errorf("Expected owner %d, got %d", user.ID(), category.UserID())
	}
	if category.CreatedAt().IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestCreateCategoryUniquePerUser(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, user.ID(), "Food", "🍕"); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	_, err := s.CreateCategory(ctx, user.ID(), "Food", "🍔")
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for same name and user, got %v", err)
	}

	other, err := s.CreateUser(ctx, "Other", "other@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	if _, err = s.CreateCategory(ctx, other.ID(), "Food", "🍕"); err != nil {
		t.Errorf("Same name for another user should succeed, got %v", err)
	}
}

func TestGetCategoriesScopedToUser(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	other, err := s.CreateUser(ctx, "Other", "other@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	for _, name := range []string{"Transport", "Food"} {
		if _, err = s.CreateCategory(ctx, user.ID(), name, "x"); err != nil {
			t.Fatalf("Failed to create category: %v", err)
		}
	}
	if _, err = s.CreateCategory(ctx, other.ID(), "Rent", "🏠"); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	categories, err := s.GetCategories(ctx, user.ID())
	if err != nil {
		t.Fatalf("Failed to get categories: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name() != "Food" || categories[1].Name() != "Transport" {
		t.Errorf("Expected categories ordered by name, got %s, %s", categories[0].Name(), categories[1].Name())
	}
}

func TestGetCategoryOfAnotherUser(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	other, err := s.CreateUser(ctx, "Other", "other@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	category, err := s.CreateCategory(ctx, other.ID(), "Rent", "🏠")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	_, err = s.GetCategory(ctx, user.ID(), category.ID())
	var notFoundErr *storage.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}

	found, err := s.GetCategoryByName(ctx, other.ID(), "Rent")
	if err != nil {
		t.Fatalf("Failed to get category by name: %v", err)
	}
	if found.ID() != category.ID() {
		t.Errorf("Expected category %d, got %d", category.ID(), found.ID())
	}
}

func TestUpdateCategory(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, user.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	updated, err := s.UpdateCategory(ctx, user.ID(), category.ID(), "Groceries", "🛒")
	if err != nil {
		t.Fatalf("Failed to update category: %v", err)
	}

	if updated.Name() != "Groceries" || updated.Icon() != "🛒" {
		t.Errorf("Unexpected updated category %q %q", updated.Name(), updated.Icon())
	}

	other, err := s.CreateUser(ctx, "Other", "other@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	_, err = s.UpdateCategory(ctx, other.ID(), category.ID(), "Stolen", "🦝")
	var notFoundErr *storage.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError updating another user's category, got %v", err)
	}
}

func TestUpdateCategoryDuplicateName(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, user.ID(), "Food", "🍕"); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	transport, err := s.CreateCategory(ctx, user.ID(), "Transport", "🚌")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	_, err = s.UpdateCategory(ctx, user.ID(), transport.ID(), "Food", "🚌")
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, user.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	if err = s.DeleteCategory(ctx, user.ID(), category.ID()); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}

	_, err = s.GetCategory(ctx, user.ID(), category.ID())
	var notFoundErr *storage.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}

	err = s.DeleteCategory(ctx, user.ID(), category.ID())
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError deleting twice, got %v", err)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	s, user := setupTestStorage(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, user.ID(), "Food", "🍕")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	_, err = s.InsertExpense(ctx, storage.NewExpense(0, 1500, "Lunch", date, category.ID(), user.ID(), time.Time{}, time.Time{}))
	if err != nil {
		t.Fatalf("Failed to insert expense: %v", err)
	}

	err = s.DeleteCategory(ctx, user.ID(), category.ID())
	if !errors.Is(err, storage.ErrCategoryInUse) {
		t.Errorf("Expected ErrCategoryInUse, got %v", err)
	}

	if _, err = s.GetCategory(ctx, user.ID(), category.ID()); err != nil {
		t.Errorf("Category should still exist: %v", err)
	}
}

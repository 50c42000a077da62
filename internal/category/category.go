// Package category manages the expense categories of a user.
package category

import (
	"context"
	"errors"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/controlai/controlai/internal/apperror"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
)

const notOwnedMessage = "category does not belong to you"

type Service struct {
	storage storage.Storage
	logger  *logger.Logger
}

func NewService(storage storage.Storage, logger *logger.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID int64, name, icon string) (storage.Category, error) {
	name = strings.TrimSpace(name)
	icon = strings.TrimSpace(icon)

	if name == "" {
		return nil, apperror.Invalid("category name is required")
	}
	if err := validateIcon(icon); err != nil {
		return nil, err
	}

	category, err := s.storage.CreateCategory(ctx, userID, name, icon)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperror.Invalid("category " + name + " already exists")
		}
		return nil, apperror.FromStorage("failed to create category", err)
	}

	s.logger.Debug("Category created", "user_id", userID, "category_id", category.ID())

	return category, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]storage.Category, error) {
	categories, err := s.storage.GetCategories(ctx, userID)
	if err != nil {
		return nil, apperror.FromStorage("failed to list categories", err)
	}
	return categories, nil
}

// Update changes name and icon of a category. Empty values keep the current one.
func (s *Service) Update(
	ctx context.Context,
	userID, categoryID int64,
	name, icon string,
) (storage.Category, error) {
	current, err := s.owned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	icon = strings.TrimSpace(icon)
	if name == "" {
		name = current.Name()
	}
	if icon == "" {
		icon = current.Icon()
	} else if err = validateIcon(icon); err != nil {
		return nil, err
	}

	updated, err := s.storage.UpdateCategory(ctx, userID, categoryID, name, icon)
	if err != nil {
		var notFound *storage.NotFoundError
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nil, apperror.Invalid("category " + name + " already exists")
		case errors.As(err, &notFound):
			return nil, apperror.Invalid(notOwnedMessage)
		}
		return nil, apperror.FromStorage("failed to update category", err)
	}

	return updated, nil
}

// Delete removes a category. Categories still referenced by expenses are kept.
func (s *Service) Delete(ctx context.Context, userID, categoryID int64) error {
	err := s.storage.DeleteCategory(ctx, userID, categoryID)
	if err == nil {
		s.logger.Debug("Category deleted", "user_id", userID, "category_id", categoryID)
		return nil
	}

	var notFound *storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return apperror.Invalid(notOwnedMessage)
	case errors.Is(err, storage.ErrCategoryInUse):
		return apperror.Invalid("category has expenses and cannot be deleted")
	}

	return apperror.FromStorage("failed to delete category", err)
}

func (s *Service) owned(ctx context.Context, userID, categoryID int64) (storage.Category, error) {
	category, err := s.storage.GetCategory(ctx, userID, categoryID)
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperror.Invalid(notOwnedMessage)
		}
		return nil, apperror.FromStorage("failed to get category", err)
	}
	return category, nil
}

// validateIcon accepts exactly one user-perceived character, so emoji built
// from several code points are fine.
func validateIcon(icon string) error {
	if uniseg.GraphemeClusterCount(icon) != 1 {
		return apperror.Invalid("icon must be a single character")
	}
	return nil
}

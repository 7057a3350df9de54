package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// NewCategoryInput contains the parameters for creating a category.
type NewCategoryInput struct {
	Name  string // Category name (required)
	Color string // #RRGGBB color (empty = default gray)
}

// NewCategoryOutput contains the result of creating a category.
type NewCategoryOutput struct {
	Category *domain.Category
}

// NewCategory is the use case for creating a category.
type NewCategory struct {
	repo     domain.CategoryRepository
	store    *state.Store
	identity domain.Identity
	clock    domain.Clock
	logger   domain.Logger
}

// NewNewCategory creates a new NewCategory use case.
func NewNewCategory(
	repo domain.CategoryRepository,
	store *state.Store,
	identity domain.Identity,
	clock domain.Clock,
	logger domain.Logger,
) *NewCategory {
	return &NewCategory{repo: repo, store: store, identity: identity, clock: clock, logger: logger}
}

// Execute creates the category for the current user.
func (uc *NewCategory) Execute(ctx context.Context, in NewCategoryInput) (*NewCategoryOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	color := in.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	if !domain.IsValidColor(color) {
		return nil, domain.ErrInvalidColor
	}
	userID, err := shared.CurrentUser(uc.identity)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:      domain.NewID(),
		UserID:  userID,
		Name:    name,
		Color:   color,
		Created: uc.clock.Now(),
	}
	if err := uc.repo.SaveCategory(ctx, category); err != nil {
		return nil, domain.NewStoreError("save category", err)
	}
	if err := uc.store.PutCategory(category); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info("", domain.LogCategory, fmt.Sprintf("created: %q", name))
	}

	return &NewCategoryOutput{Category: category}, nil
}

// ListCategoriesOutput contains the categories of the current user.
// Fields are ordered to minimize memory padding.
type ListCategoriesOutput struct {
	Categories []*domain.Category
	Counts     map[string]int // Open tasks per category id
}

// ListCategories is the use case for listing categories.
type ListCategories struct {
	store *state.Store
}

// NewListCategories creates a new ListCategories use case.
func NewListCategories(store *state.Store) *ListCategories {
	return &ListCategories{store: store}
}

// Execute returns every category with its open task count.
func (uc *ListCategories) Execute(_ context.Context) (*ListCategoriesOutput, error) {
	counts := make(map[string]int)
	for _, t := range uc.store.Tasks() {
		if !t.Completed {
			counts[t.CategoryID]++
		}
	}
	return &ListCategoriesOutput{Categories: uc.store.Categories(), Counts: counts}, nil
}

// DeleteCategoryInput contains the parameters for deleting a category.
type DeleteCategoryInput struct {
	CategoryID string
}

// DeleteCategory is the use case for deleting a category.
// Tasks keep their reference and render as uncategorized.
type DeleteCategory struct {
	repo   domain.CategoryRepository
	store  *state.Store
	logger domain.Logger
}

// NewDeleteCategory creates a new DeleteCategory use case.
func NewDeleteCategory(repo domain.CategoryRepository, store *state.Store, logger domain.Logger) *DeleteCategory {
	return &DeleteCategory{repo: repo, store: store, logger: logger}
}

// Execute deletes the category.
func (uc *DeleteCategory) Execute(ctx context.Context, in DeleteCategoryInput) error {
	category := uc.store.Category(in.CategoryID)
	if category == nil {
		return domain.ErrCategoryNotFound
	}
	if err := uc.repo.DeleteCategory(ctx, category.ID); err != nil {
		return domain.NewStoreError("delete category", err)
	}
	uc.store.RemoveCategory(category.ID)

	if uc.logger != nil {
		uc.logger.Info("", domain.LogCategory, fmt.Sprintf("deleted: %q", category.Name))
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/tempo/internal/domain"
)

// InitStoreOutput contains the result of initializing the store.
type InitStoreOutput struct {
	Seeded  []*domain.Category // Categories created for a new user
	Created bool               // The backing storage was newly created
}

// InitStore is the use case for preparing the store for the current user.
type InitStore struct {
	initializer domain.StoreInitializer
	repo        domain.CategoryRepository
	identity    domain.Identity
	clock       domain.Clock
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(initializer domain.StoreInitializer, repo domain.CategoryRepository, identity domain.Identity, clock domain.Clock) *InitStore {
	return &InitStore{initializer: initializer, repo: repo, identity: identity, clock: clock}
}

// Execute creates the backing storage if needed and seeds the default
// categories when the current user has none. Anonymous users get no seed.
func (uc *InitStore) Execute(ctx context.Context) (*InitStoreOutput, error) {
	created, err := uc.initializer.Initialize()
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	out := &InitStoreOutput{Created: created}

	userID := ""
	if uc.identity != nil {
		userID = uc.identity.CurrentUser()
	}
	if userID == "" {
		return out, nil
	}

	existing, err := uc.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreError("list categories", err)
	}
	if len(existing) > 0 {
		return out, nil
	}

	now := uc.clock.Now()
	for i, c := range domain.DefaultCategories() {
		category := &domain.Category{
			ID:      domain.NewID(),
			UserID:  userID,
			Name:    c.Name,
			Color:   c.Color,
			Created: now.Add(time.Duration(i) * time.Millisecond), // keeps seed order stable
		}
		if err := uc.repo.SaveCategory(ctx, category); err != nil {
			return nil, domain.NewStoreError("save category", err)
		}
		out.Seeded = append(out.Seeded, category)
	}
	return out, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// LoadStateInput contains the parameters for loading a user's state.
type LoadStateInput struct {
	UserID string // User to load ("" = anonymous, leaves the store empty)
}

// LoadStateOutput contains the result of loading a user's state.
// Fields are ordered to minimize memory padding.
type LoadStateOutput struct {
	Warnings []string // Inconsistencies between timer flags and sessions
	Tasks    int
	Sessions int
}

// LoadState is the use case for replacing the entity store with a user's
// data. It runs at startup and whenever the authenticated identity changes.
type LoadState struct {
	repo   domain.Repository
	store  *state.Store
	logger domain.Logger
}

// NewLoadState creates a new LoadState use case.
func NewLoadState(repo domain.Repository, store *state.Store, logger domain.Logger) *LoadState {
	return &LoadState{repo: repo, store: store, logger: logger}
}

// Execute discards the in-memory state and reloads it from the store.
// On failure the store is left empty rather than holding another user's data.
func (uc *LoadState) Execute(ctx context.Context, in LoadStateInput) (*LoadStateOutput, error) {
	uc.store.Reset()
	if in.UserID == "" {
		return &LoadStateOutput{}, nil
	}

	tasks, err := uc.repo.ListTasks(ctx, domain.TaskFilter{UserID: in.UserID})
	if err != nil {
		return nil, domain.NewStoreError("list tasks", err)
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	snap := state.Snapshot{UserID: in.UserID, Tasks: tasks}
	if len(ids) > 0 {
		if snap.Subtasks, err = uc.repo.ListSubtasks(ctx, ids...); err != nil {
			return nil, domain.NewStoreError("list subtasks", err)
		}
		if snap.Sessions, err = uc.repo.ListSessions(ctx, domain.SessionFilter{TaskIDs: ids}); err != nil {
			return nil, domain.NewStoreError("list sessions", err)
		}
	}
	if snap.Categories, err = uc.repo.ListCategories(ctx, in.UserID); err != nil {
		return nil, domain.NewStoreError("list categories", err)
	}

	uc.store.Replace(snap)

	out := &LoadStateOutput{
		Tasks:    len(tasks),
		Sessions: len(snap.Sessions),
		Warnings: CheckTimers(uc.store),
	}
	if uc.logger != nil {
		for _, w := range out.Warnings {
			uc.logger.Warn("", domain.LogState, w)
		}
		uc.logger.Debug("", domain.LogState, fmt.Sprintf("loaded %d tasks for %s", len(tasks), in.UserID))
	}
	return out, nil
}

// CheckTimers cross-checks every continuous task's timer flag against its
// open sessions and describes each mismatch.
func CheckTimers(store *state.Store) []string {
	var warnings []string
	for _, t := range store.TasksByType(domain.TaskTypeContinuous) {
		open := store.OpenSessions(t.ID)
		short := domain.ShortID(t.ID)
		switch {
		case len(open) > 1:
			warnings = append(warnings, fmt.Sprintf("task %s has %d open sessions", short, len(open)))
		case t.IsActive && len(open) == 0:
			warnings = append(warnings, fmt.Sprintf("task %s is active without an open session", short))
		case !t.IsActive && len(open) == 1:
			warnings = append(warnings, fmt.Sprintf("task %s has an open session but is not active", short))
		}
	}
	return warnings
}

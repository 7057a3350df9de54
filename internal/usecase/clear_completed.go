package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// ClearCompletedInput contains the parameters for clearing completed tasks.
type ClearCompletedInput struct {
	Type domain.TaskType // Partition to clear (empty = both)
}

// ClearCompletedOutput contains the result of clearing completed tasks.
type ClearCompletedOutput struct {
	Deleted []string // IDs of the deleted tasks
}

// ClearCompleted is the use case for deleting every completed task of a partition.
type ClearCompleted struct {
	repo         domain.Repository
	store        *state.Store
	configLoader domain.ConfigLoader
	logger       domain.Logger
}

// NewClearCompleted creates a new ClearCompleted use case.
func NewClearCompleted(repo domain.Repository, store *state.Store, configLoader domain.ConfigLoader, logger domain.Logger) *ClearCompleted {
	return &ClearCompleted{
		repo:         repo,
		store:        store,
		configLoader: configLoader,
		logger:       logger,
	}
}

// Execute deletes the completed tasks, each with its subtasks.
// Tasks deleted before a failure stay deleted and are reported in the output.
func (uc *ClearCompleted) Execute(ctx context.Context, in ClearCompletedInput) (*ClearCompletedOutput, error) {
	if in.Type != "" && !in.Type.IsValid() {
		return nil, domain.ErrInvalidTaskType
	}

	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	tasks := uc.store.Tasks()
	if in.Type != "" {
		tasks = uc.store.TasksByType(in.Type)
	}

	out := &ClearCompletedOutput{}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		if _, err := removeTask(ctx, uc.repo, uc.store, t.ID, cfg.Tasks.CascadeSessions); err != nil {
			return out, err
		}
		out.Deleted = append(out.Deleted, t.ID)
	}

	if uc.logger != nil && len(out.Deleted) > 0 {
		uc.logger.Info("", domain.LogTask, fmt.Sprintf("cleared %d completed tasks", len(out.Deleted)))
	}

	return out, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string // Task ID to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task            *domain.Task // The deleted task
	SessionsDeleted int          // Time sessions removed with the task
}

// DeleteTask is the use case for deleting a task.
// Subtasks always go with the task. Time sessions are kept for the record
// unless [tasks] cascade_sessions is set.
type DeleteTask struct {
	repo         domain.Repository
	store        *state.Store
	configLoader domain.ConfigLoader
	logger       domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(repo domain.Repository, store *state.Store, configLoader domain.ConfigLoader, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		repo:         repo,
		store:        store,
		configLoader: configLoader,
		logger:       logger,
	}
}

// Execute deletes a task with the given ID.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.GetTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}

	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	n, err := removeTask(ctx, uc.repo, uc.store, task.ID, cfg.Tasks.CascadeSessions)
	if err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, domain.LogTask, fmt.Sprintf("deleted: %q", task.Title))
	}

	return &DeleteTaskOutput{Task: task, SessionsDeleted: n}, nil
}

// removeTask deletes a task (and its subtasks) from the store and then from
// memory. It returns the number of sessions deleted with it.
func removeTask(ctx context.Context, repo domain.Repository, store *state.Store, taskID string, cascade bool) (int, error) {
	if err := repo.DeleteTask(ctx, taskID); err != nil {
		return 0, domain.NewStoreError("delete task", err)
	}
	store.RemoveTask(taskID)

	if !cascade {
		return 0, nil
	}
	if err := repo.DeleteSessionsByTask(ctx, taskID); err != nil {
		return 0, domain.NewStoreError("delete sessions", err)
	}
	sessions := store.Sessions(taskID)
	for _, s := range sessions {
		store.RemoveSession(s.ID)
	}
	return len(sessions), nil
}

package shared

import (
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// GetTask retrieves a task from the entity store and returns
// domain.ErrTaskNotFound if it is missing.
func GetTask(store *state.Store, taskID string) (*domain.Task, error) {
	task := store.Task(taskID)
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetSubtask retrieves a subtask from the entity store and returns
// domain.ErrSubtaskNotFound if it is missing.
func GetSubtask(store *state.Store, subtaskID string) (*domain.Subtask, error) {
	st := store.Subtask(subtaskID)
	if st == nil {
		return nil, domain.ErrSubtaskNotFound
	}
	return st, nil
}

// CurrentUser returns the authenticated user or domain.ErrNotAuthenticated.
func CurrentUser(identity domain.Identity) (string, error) {
	if identity == nil {
		return "", domain.ErrNotAuthenticated
	}
	user := identity.CurrentUser()
	if user == "" {
		return "", domain.ErrNotAuthenticated
	}
	return user, nil
}

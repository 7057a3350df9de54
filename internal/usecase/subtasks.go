package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// AddSubtaskInput contains the parameters for adding a subtask.
type AddSubtaskInput struct {
	TaskID string // Owning task
	Title  string // Subtask title (required)
}

// AddSubtaskOutput contains the result of adding a subtask.
type AddSubtaskOutput struct {
	Subtask *domain.Subtask
}

// AddSubtask is the use case for appending a subtask to a task.
type AddSubtask struct {
	repo   domain.SubtaskRepository
	store  *state.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewAddSubtask creates a new AddSubtask use case.
func NewAddSubtask(repo domain.SubtaskRepository, store *state.Store, clock domain.Clock, logger domain.Logger) *AddSubtask {
	return &AddSubtask{repo: repo, store: store, clock: clock, logger: logger}
}

// Execute appends the subtask after the task's current last subtask.
func (uc *AddSubtask) Execute(ctx context.Context, in AddSubtaskInput) (*AddSubtaskOutput, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	task, err := shared.GetTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}

	next := 0
	for _, st := range task.Subtasks {
		if st.OrderIndex >= next {
			next = st.OrderIndex + 1
		}
	}
	subtask := &domain.Subtask{
		ID:         domain.NewID(),
		TaskID:     task.ID,
		Title:      title,
		OrderIndex: next,
		Created:    uc.clock.Now(),
	}

	if err := uc.repo.SaveSubtask(ctx, subtask); err != nil {
		return nil, domain.NewStoreError("save subtask", err)
	}
	if err := uc.store.PutSubtask(subtask); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Debug(task.ID, domain.LogSubtask, fmt.Sprintf("added: %q", title))
	}

	return &AddSubtaskOutput{Subtask: subtask}, nil
}

// ToggleSubtaskInput contains the parameters for toggling a subtask.
type ToggleSubtaskInput struct {
	SubtaskID string
}

// ToggleSubtaskOutput contains the result of toggling a subtask.
type ToggleSubtaskOutput struct {
	Subtask *domain.Subtask
}

// ToggleSubtask is the use case for flipping a subtask's completion state.
type ToggleSubtask struct {
	repo  domain.SubtaskRepository
	store *state.Store
	clock domain.Clock
}

// NewToggleSubtask creates a new ToggleSubtask use case.
func NewToggleSubtask(repo domain.SubtaskRepository, store *state.Store, clock domain.Clock) *ToggleSubtask {
	return &ToggleSubtask{repo: repo, store: store, clock: clock}
}

// Execute flips completion with the same completedAt rule as tasks.
func (uc *ToggleSubtask) Execute(ctx context.Context, in ToggleSubtaskInput) (*ToggleSubtaskOutput, error) {
	subtask, err := shared.GetSubtask(uc.store, in.SubtaskID)
	if err != nil {
		return nil, err
	}
	subtask.SetCompleted(!subtask.Completed, uc.clock.Now())

	if err := uc.repo.SaveSubtask(ctx, subtask); err != nil {
		return nil, domain.NewStoreError("save subtask", err)
	}
	if err := uc.store.PutSubtask(subtask); err != nil {
		return nil, err
	}
	return &ToggleSubtaskOutput{Subtask: subtask}, nil
}

// DeleteSubtaskInput contains the parameters for deleting a subtask.
type DeleteSubtaskInput struct {
	SubtaskID string
}

// DeleteSubtask is the use case for deleting a subtask.
type DeleteSubtask struct {
	repo  domain.SubtaskRepository
	store *state.Store
}

// NewDeleteSubtask creates a new DeleteSubtask use case.
func NewDeleteSubtask(repo domain.SubtaskRepository, store *state.Store) *DeleteSubtask {
	return &DeleteSubtask{repo: repo, store: store}
}

// Execute deletes the subtask.
func (uc *DeleteSubtask) Execute(ctx context.Context, in DeleteSubtaskInput) error {
	subtask, err := shared.GetSubtask(uc.store, in.SubtaskID)
	if err != nil {
		return err
	}
	if err := uc.repo.DeleteSubtask(ctx, subtask.ID); err != nil {
		return domain.NewStoreError("delete subtask", err)
	}
	uc.store.RemoveSubtask(subtask.ID)
	return nil
}

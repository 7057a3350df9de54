package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// ToggleTaskInput contains the parameters for toggling completion.
type ToggleTaskInput struct {
	TaskID string // Task ID to toggle
}

// ToggleTaskOutput contains the result of toggling completion.
// Fields are ordered to minimize memory padding.
type ToggleTaskOutput struct {
	Task     *domain.Task // The updated task
	Warnings []string     // Warnings from stopping the timer, if it was stopped
	Stopped  bool         // The timer was stopped before completing
}

// ToggleTask is the use case for flipping a task's completion state.
//
// Completing an active continuous task leaves its timer running unless
// [timer] stop_on_complete is set, in which case the timer is stopped first.
type ToggleTask struct {
	edit         *EditTask
	stop         *StopTask
	store        *state.Store
	configLoader domain.ConfigLoader
}

// NewToggleTask creates a new ToggleTask use case.
func NewToggleTask(edit *EditTask, stop *StopTask, store *state.Store, configLoader domain.ConfigLoader) *ToggleTask {
	return &ToggleTask{
		edit:         edit,
		stop:         stop,
		store:        store,
		configLoader: configLoader,
	}
}

// Execute flips completion and applies the EditTask rules.
func (uc *ToggleTask) Execute(ctx context.Context, in ToggleTaskInput) (*ToggleTaskOutput, error) {
	task, err := shared.GetTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}
	completed := !task.Completed
	out := &ToggleTaskOutput{}

	if completed && task.IsActive {
		cfg, err := uc.configLoader.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if cfg.Timer.StopOnComplete {
			stopped, err := uc.stop.Execute(ctx, StopTaskInput{TaskID: task.ID})
			if err != nil {
				return nil, fmt.Errorf("stop timer: %w", err)
			}
			out.Stopped = true
			out.Warnings = stopped.Warnings
		}
	}

	edited, err := uc.edit.Execute(ctx, EditTaskInput{TaskID: task.ID, Completed: &completed})
	if err != nil {
		return nil, err
	}
	out.Task = edited.Task
	return out, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
// All fields except TaskID are optional. Only non-nil fields are updated.
// The timer flag is not editable; it changes through StartTask and StopTask.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title         *string          // New title
	Description   *string          // New description
	Notes         *string          // New notes
	CategoryID    *string          // New category ("" = uncategorized)
	Priority      *domain.Priority // New priority
	DueDate       *domain.Date     // New due date
	ReminderAt    *time.Time       // New reminder
	Completed     *bool            // New completion state
	Duration      *int             // New planned minutes (continuous only)
	StartTime     *time.Time       // New planned start (continuous, not while active)
	EndTime       *time.Time       // New planned end (continuous, not while active)
	TaskID        string           // Task ID to edit (required)
	ClearDueDate  bool             // Remove the due date
	ClearReminder bool             // Remove the reminder
}

func (in EditTaskInput) isEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Notes == nil &&
		in.CategoryID == nil && in.Priority == nil && in.DueDate == nil &&
		in.ReminderAt == nil && in.Completed == nil && in.Duration == nil &&
		in.StartTime == nil && in.EndTime == nil && !in.ClearDueDate && !in.ClearReminder
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The updated task
}

// EditTask is the use case for editing an existing task.
type EditTask struct {
	repo   domain.TaskRepository
	store  *state.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(repo domain.TaskRepository, store *state.Store, clock domain.Clock, logger domain.Logger) *EditTask {
	return &EditTask{
		repo:   repo,
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute merges the given fields into the task.
// Completion follows the completedAt rule of domain.Task.SetCompleted.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	// Validate that at least one field is being updated
	if in.isEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	task, err := shared.GetTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}

	if err := uc.apply(task, in); err != nil {
		return nil, err
	}
	task.Updated = uc.clock.Now()

	if err := uc.repo.SaveTask(ctx, task); err != nil {
		return nil, domain.NewStoreError("save task", err)
	}
	if err := uc.store.PutTask(task); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Debug(task.ID, domain.LogTask, "edited")
	}

	return &EditTaskOutput{Task: uc.store.Task(task.ID)}, nil
}

// apply validates and merges the input into task.
func (uc *EditTask) apply(task *domain.Task, in EditTaskInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.ErrEmptyTitle
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Notes != nil {
		task.Notes = *in.Notes
	}
	if in.CategoryID != nil {
		if *in.CategoryID != "" && uc.store.Category(*in.CategoryID) == nil {
			return domain.ErrCategoryNotFound
		}
		task.CategoryID = *in.CategoryID
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return domain.ErrInvalidPriority
		}
		task.Priority = *in.Priority
	}
	switch {
	case in.ClearDueDate:
		task.DueDate = nil
	case in.DueDate != nil:
		due := *in.DueDate
		task.DueDate = &due
	}
	switch {
	case in.ClearReminder:
		task.ReminderAt = nil
	case in.ReminderAt != nil:
		at := *in.ReminderAt
		task.ReminderAt = &at
	}

	if in.Duration != nil || in.StartTime != nil || in.EndTime != nil {
		if !task.IsContinuous() {
			return domain.ErrNotContinuous
		}
	}
	if in.Duration != nil {
		if *in.Duration < 0 {
			return domain.ErrInvalidDuration
		}
		task.DurationMinutes = *in.Duration
	}
	if in.StartTime != nil || in.EndTime != nil {
		// While running, StartTime is the open session's start
		if task.IsActive {
			return domain.ErrTimerFieldsLocked
		}
		if in.StartTime != nil {
			at := *in.StartTime
			task.StartTime = &at
		}
		if in.EndTime != nil {
			at := *in.EndTime
			task.EndTime = &at
		}
	}

	if in.Completed != nil && task.SetCompleted(*in.Completed, uc.clock.Now()) && uc.logger != nil {
		uc.logger.Info(task.ID, domain.LogTask, fmt.Sprintf("completed=%t", task.Completed))
	}
	return nil
}

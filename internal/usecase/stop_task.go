package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// StopTaskInput contains the parameters for stopping a continuous task.
type StopTaskInput struct {
	TaskID string // Task ID to stop
}

// StopTaskOutput contains the result of stopping a continuous task.
// Fields are ordered to minimize memory padding.
type StopTaskOutput struct {
	Task     *domain.Task        // The task after the stop
	Session  *domain.TimeSession // The closed session
	Warnings []string            // Soft failures that did not block the stop
	Minutes  int                 // Minutes added to the total
}

// StopTask is the use case for stopping the timer of a continuous task.
type StopTask struct {
	repo   timerRepository
	store  *state.Store
	guard  *shared.InFlight
	clock  domain.Clock
	logger domain.Logger
}

// NewStopTask creates a new StopTask use case.
func NewStopTask(
	repo timerRepository,
	store *state.Store,
	guard *shared.InFlight,
	clock domain.Clock,
	logger domain.Logger,
) *StopTask {
	return &StopTask{
		repo:   repo,
		store:  store,
		guard:  guard,
		clock:  clock,
		logger: logger,
	}
}

// Execute closes the open session and adds its minutes to the task total.
// A stop is not idempotent and is never retried: a second stop fails with
// domain.ErrNotActive instead of counting the time twice.
func (uc *StopTask) Execute(ctx context.Context, in StopTaskInput) (*StopTaskOutput, error) {
	release, err := uc.guard.Acquire(in.TaskID)
	if err != nil {
		return nil, err
	}
	defer release()

	task := uc.store.Task(in.TaskID)
	if task == nil {
		return nil, domain.ErrTimerTaskNotFound
	}
	if !task.IsActive {
		return nil, domain.ErrNotActive
	}
	open := uc.store.OpenSession(task.ID)
	if open == nil {
		return nil, domain.ErrNoOpenSession
	}

	now := uc.clock.Now()
	closed := open.Clone()
	minutes, clamped := closed.Close(now)

	task.IsActive = false
	task.EndTime = &now
	task.TotalTimeSpentMinutes += minutes
	task.Updated = now

	if err := uc.repo.SaveSession(ctx, closed); err != nil {
		return nil, domain.NewStoreError("save session", err)
	}
	if err := uc.repo.SaveTask(ctx, task); err != nil {
		if restoreErr := uc.repo.SaveSession(ctx, open); restoreErr != nil && uc.logger != nil {
			uc.logger.Error(task.ID, domain.LogTimer, fmt.Sprintf("reopen session %s: %v", domain.ShortID(open.ID), restoreErr))
		}
		return nil, domain.NewStoreError("save task", err)
	}

	if err := uc.store.PutSession(closed); err != nil {
		return nil, err
	}
	if err := uc.store.PutTask(task); err != nil {
		return nil, err
	}

	out := &StopTaskOutput{
		Task:    uc.store.Task(task.ID),
		Session: closed,
		Minutes: minutes,
	}
	if clamped {
		msg := fmt.Sprintf("session ended before it started (start %s, stop %s); recorded 0 minutes",
			open.StartTime.Format("15:04:05"), now.Format("15:04:05"))
		out.Warnings = append(out.Warnings, msg)
		if uc.logger != nil {
			uc.logger.Warn(task.ID, domain.LogTimer, msg)
		}
	}
	if uc.logger != nil {
		uc.logger.Info(task.ID, domain.LogTimer, domain.SessionStoppedMessage(closed, task.TotalTimeSpentMinutes))
	}

	return out, nil
}

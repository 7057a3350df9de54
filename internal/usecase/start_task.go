// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// timerRepository is the part of the store the timer use cases write to.
type timerRepository interface {
	domain.TaskRepository
	domain.SessionRepository
}

// StartTaskInput contains the parameters for starting a continuous task.
type StartTaskInput struct {
	TaskID string // Task ID to start
}

// StartTaskOutput contains the result of starting a continuous task.
type StartTaskOutput struct {
	Task    *domain.Task        // The task after the start
	Session *domain.TimeSession // The newly opened session
}

// StartTask is the use case for starting the timer of a continuous task.
// It is the only path that opens a time session.
type StartTask struct {
	repo   timerRepository
	store  *state.Store
	guard  *shared.InFlight
	clock  domain.Clock
	logger domain.Logger
}

// NewStartTask creates a new StartTask use case.
// guard must be shared with StopTask so both serialize on the same task.
func NewStartTask(
	repo timerRepository,
	store *state.Store,
	guard *shared.InFlight,
	clock domain.Clock,
	logger domain.Logger,
) *StartTask {
	return &StartTask{
		repo:   repo,
		store:  store,
		guard:  guard,
		clock:  clock,
		logger: logger,
	}
}

// Execute opens a session and marks the task active.
// The session is written before the task; if the task write fails the
// session is deleted again and the entity store is left untouched.
func (uc *StartTask) Execute(ctx context.Context, in StartTaskInput) (*StartTaskOutput, error) {
	release, err := uc.guard.Acquire(in.TaskID)
	if err != nil {
		return nil, err
	}
	defer release()

	task := uc.store.Task(in.TaskID)
	if task == nil {
		return nil, domain.ErrTimerTaskNotFound
	}
	if !task.IsContinuous() {
		return nil, domain.ErrNotContinuous
	}
	if task.IsActive {
		return nil, domain.ErrAlreadyActive
	}
	if uc.store.OpenSession(task.ID) != nil {
		return nil, domain.ErrSessionOpen
	}

	now := uc.clock.Now()
	session := &domain.TimeSession{
		ID:        domain.NewID(),
		TaskID:    task.ID,
		StartTime: now,
	}

	task.IsActive = true
	task.StartTime = &now
	task.Updated = now

	if err := uc.repo.SaveSession(ctx, session); err != nil {
		return nil, domain.NewStoreError("save session", err)
	}
	if err := uc.repo.SaveTask(ctx, task); err != nil {
		if delErr := uc.repo.DeleteSession(ctx, session.ID); delErr != nil && uc.logger != nil {
			uc.logger.Error(task.ID, domain.LogTimer, fmt.Sprintf("rollback session %s: %v", domain.ShortID(session.ID), delErr))
		}
		return nil, domain.NewStoreError("save task", err)
	}

	if err := uc.store.PutSession(session); err != nil {
		return nil, err
	}
	if err := uc.store.PutTask(task); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, domain.LogTimer, domain.SessionStartedMessage(session))
	}

	return &StartTaskOutput{Task: uc.store.Task(task.ID), Session: session}, nil
}

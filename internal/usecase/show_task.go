package usecase

import (
	"context"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string // Task ID to show
}

// ShowTaskOutput contains the result of showing a task.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Task     *domain.Task          // The task with subtasks attached
	Category *domain.Category      // The task's category (nil = uncategorized or deleted)
	Sessions []*domain.TimeSession // Time sessions ordered by start
	Timer    TimerReading          // Live timer reading (continuous only)
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	store *state.Store
	clock domain.Clock
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(store *state.Store, clock domain.Clock) *ShowTask {
	return &ShowTask{store: store, clock: clock}
}

// Execute retrieves a task with its category and sessions.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}

	out := &ShowTaskOutput{Task: task}
	if task.CategoryID != "" {
		out.Category = uc.store.Category(task.CategoryID)
	}
	if task.IsContinuous() {
		out.Sessions = uc.store.Sessions(task.ID)
		out.Timer = ReadTimer(task, uc.clock.Now())
	}
	return out, nil
}

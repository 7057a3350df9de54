package usecase

import (
	"context"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// TimerReading is the live state of a continuous task's timer.
// It is computed on demand and never written back.
// Fields are ordered to minimize memory padding.
type TimerReading struct {
	TaskID       string
	Elapsed      time.Duration // Running time of the open session
	Progress     float64       // Elapsed share of the planned duration, 0-100
	TotalMinutes int           // Minutes of closed sessions
	Active       bool
}

// ReadTimer computes the timer reading of a task at now.
func ReadTimer(task *domain.Task, now time.Time) TimerReading {
	return TimerReading{
		TaskID:       task.ID,
		Elapsed:      task.Elapsed(now),
		Progress:     task.Progress(now),
		TotalMinutes: task.TotalTimeSpentMinutes,
		Active:       task.IsActive,
	}
}

// GetElapsedInput contains the parameters for reading timers.
type GetElapsedInput struct {
	TaskID string // Task to read (empty = every active task)
}

// GetElapsedOutput contains the timer readings.
type GetElapsedOutput struct {
	Readings []TimerReading
}

// GetElapsed is the use case for reading running timers.
type GetElapsed struct {
	store *state.Store
	clock domain.Clock
}

// NewGetElapsed creates a new GetElapsed use case.
func NewGetElapsed(store *state.Store, clock domain.Clock) *GetElapsed {
	return &GetElapsed{store: store, clock: clock}
}

// Execute returns the reading of one task, or of every active continuous task.
func (uc *GetElapsed) Execute(_ context.Context, in GetElapsedInput) (*GetElapsedOutput, error) {
	now := uc.clock.Now()

	if in.TaskID != "" {
		task, err := shared.GetTask(uc.store, in.TaskID)
		if err != nil {
			return nil, err
		}
		if !task.IsContinuous() {
			return nil, domain.ErrNotContinuous
		}
		return &GetElapsedOutput{Readings: []TimerReading{ReadTimer(task, now)}}, nil
	}

	var readings []TimerReading
	for _, task := range uc.store.TasksByType(domain.TaskTypeContinuous) {
		if task.IsActive {
			readings = append(readings, ReadTimer(task, now))
		}
	}
	return &GetElapsedOutput{Readings: readings}, nil
}

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

// NewTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	DueDate     *domain.Date    // Due date (optional)
	ReminderAt  *time.Time      // Reminder time (optional)
	StartTime   *time.Time      // Planned start of a continuous task (nil = now)
	EndTime     *time.Time      // Planned end of a continuous task (nil = start + duration)
	Title       string          // Task title (required)
	Description string          // Task description (optional)
	Notes       string          // Free-form notes (optional)
	CategoryID  string          // Category (optional)
	Type        domain.TaskType // Task type (empty = regular)
	Priority    domain.Priority // Priority (empty = medium)
	Subtasks    []string        // Titles of subtasks to create (optional)
	Duration    int             // Planned minutes of a continuous task (0 = configured default)
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task *domain.Task // The created task, with subtasks attached
}

// NewTask is the use case for creating a new task.
type NewTask struct {
	repo         domain.Repository
	store        *state.Store
	identity     domain.Identity
	configLoader domain.ConfigLoader
	clock        domain.Clock
	logger       domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(
	repo domain.Repository,
	store *state.Store,
	identity domain.Identity,
	configLoader domain.ConfigLoader,
	clock domain.Clock,
	logger domain.Logger,
) *NewTask {
	return &NewTask{
		repo:         repo,
		store:        store,
		identity:     identity,
		configLoader: configLoader,
		clock:        clock,
		logger:       logger,
	}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	// Validate input
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	typ := in.Type
	if typ == "" {
		typ = domain.TaskTypeRegular
	}
	if !typ.IsValid() {
		return nil, domain.ErrInvalidTaskType
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, domain.ErrInvalidPriority
	}
	if in.Duration < 0 {
		return nil, domain.ErrInvalidDuration
	}
	if in.CategoryID != "" && uc.store.Category(in.CategoryID) == nil {
		return nil, domain.ErrCategoryNotFound
	}

	userID, err := shared.CurrentUser(uc.identity)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	task := &domain.Task{
		ID:          domain.NewID(),
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Notes:       in.Notes,
		CategoryID:  in.CategoryID,
		Type:        typ,
		Priority:    priority,
		DueDate:     in.DueDate,
		ReminderAt:  in.ReminderAt,
		OrderIndex:  nextOrderIndex(uc.store.TasksByType(typ)),
		Created:     now,
		Updated:     now,
	}

	// Continuous tasks get a planned window but no session
	if typ == domain.TaskTypeContinuous {
		duration := in.Duration
		if duration == 0 {
			cfg, err := uc.configLoader.Load()
			if err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
			duration = cfg.Tasks.DurationOrDefault()
		}
		start := now
		if in.StartTime != nil {
			start = *in.StartTime
		}
		end := start.Add(time.Duration(duration) * time.Minute)
		if in.EndTime != nil {
			end = *in.EndTime
		}
		task.DurationMinutes = duration
		task.StartTime = &start
		task.EndTime = &end
	}

	if err := uc.repo.SaveTask(ctx, task); err != nil {
		return nil, domain.NewStoreError("save task", err)
	}
	if err := uc.store.PutTask(task); err != nil {
		return nil, err
	}

	for i, st := range in.Subtasks {
		st = strings.TrimSpace(st)
		if st == "" {
			continue
		}
		subtask := &domain.Subtask{
			ID:         domain.NewID(),
			TaskID:     task.ID,
			Title:      st,
			OrderIndex: i,
			Created:    now,
		}
		if err := uc.repo.SaveSubtask(ctx, subtask); err != nil {
			return nil, domain.NewStoreError("save subtask", err)
		}
		if err := uc.store.PutSubtask(subtask); err != nil {
			return nil, err
		}
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, domain.LogTask, fmt.Sprintf("created %s task: %q", typ, title))
	}

	return &NewTaskOutput{Task: uc.store.Task(task.ID)}, nil
}

// nextOrderIndex returns the index that appends after the partition's maximum.
func nextOrderIndex(partition []*domain.Task) int {
	next := 0
	for _, t := range partition {
		if t.OrderIndex >= next {
			next = t.OrderIndex + 1
		}
	}
	return next
}

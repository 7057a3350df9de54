package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/runoshun/tempo/internal/domain"
)

// MigrateStoreInput contains parameters for MigrateStore.
type MigrateStoreInput struct {
	UserID string // Only migrate this user's data (empty = everyone)
}

// MigrateStoreOutput contains migration results.
type MigrateStoreOutput struct {
	Total      int // Tasks in the source
	Migrated   int // Tasks written to the destination
	Skipped    int // Tasks already present and identical
	Categories int
	Subtasks   int
	Sessions   int
}

// MigrateStore copies every entity from one store backend to another,
// e.g. from the JSON file to SQLite or PostgreSQL.
type MigrateStore struct {
	source   domain.Repository
	dest     domain.Repository
	destInit domain.StoreInitializer
}

// NewMigrateStore creates a new MigrateStore use case.
func NewMigrateStore(source, dest domain.Repository, destInit domain.StoreInitializer) *MigrateStore {
	return &MigrateStore{source: source, dest: dest, destInit: destInit}
}

// Execute migrates tasks with their subtasks and sessions, then categories.
// Existing destination tasks are skipped if identical; otherwise it fails
// with domain.ErrMigrationConflict. Running it twice is safe.
func (uc *MigrateStore) Execute(ctx context.Context, in MigrateStoreInput) (*MigrateStoreOutput, error) {
	if uc.destInit == nil {
		return nil, errors.New("destination store initializer is nil")
	}
	if uc.source == nil || uc.dest == nil {
		return nil, errors.New("source or destination store is nil")
	}

	if _, err := uc.destInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize destination store: %w", err)
	}

	categories, err := uc.source.ListCategories(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("list source categories: %w", err)
	}
	out := &MigrateStoreOutput{}
	for _, c := range categories {
		if err := uc.dest.SaveCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("save destination category %s: %w", c.Name, err)
		}
		out.Categories++
	}

	tasks, err := uc.source.ListTasks(ctx, domain.TaskFilter{UserID: in.UserID})
	if err != nil {
		return nil, fmt.Errorf("list source tasks: %w", err)
	}
	out.Total = len(tasks)

	for _, task := range tasks {
		if task == nil {
			continue
		}

		existing, err := uc.dest.GetTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("check destination task %s: %w", domain.ShortID(task.ID), err)
		}
		if existing != nil {
			if tasksEqual(task, existing) {
				out.Skipped++
				continue
			}
			return nil, fmt.Errorf("%w: task %s", domain.ErrMigrationConflict, domain.ShortID(task.ID))
		}

		if err := uc.dest.SaveTask(ctx, task); err != nil {
			return nil, fmt.Errorf("save destination task %s: %w", domain.ShortID(task.ID), err)
		}

		subtasks, err := uc.source.ListSubtasks(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("list source subtasks: %w", err)
		}
		for _, st := range subtasks {
			if err := uc.dest.SaveSubtask(ctx, st); err != nil {
				return nil, fmt.Errorf("save destination subtask: %w", err)
			}
			out.Subtasks++
		}

		sessions, err := uc.source.ListSessions(ctx, domain.SessionFilter{TaskIDs: []string{task.ID}})
		if err != nil {
			return nil, fmt.Errorf("list source sessions: %w", err)
		}
		for _, s := range sessions {
			if err := uc.dest.SaveSession(ctx, s); err != nil {
				return nil, fmt.Errorf("save destination session: %w", err)
			}
			out.Sessions++
		}
		out.Migrated++
	}

	return out, nil
}

// tasksEqual compares the stored fields of two tasks.
// Timestamps are compared as instants so a location change is not a conflict.
func tasksEqual(a, b *domain.Task) bool {
	if a == nil || b == nil {
		return a == b
	}
	ca, cb := normalizeTask(a), normalizeTask(b)
	return reflect.DeepEqual(ca, cb)
}

func normalizeTask(t *domain.Task) *domain.Task {
	c := t.Clone()
	c.Subtasks = nil
	c.Created = c.Created.UTC()
	c.Updated = c.Updated.UTC()
	for _, p := range []**time.Time{&c.ReminderAt, &c.CompletedAt, &c.StartTime, &c.EndTime} {
		if *p != nil {
			u := (*p).UTC()
			*p = &u
		}
	}
	return c
}

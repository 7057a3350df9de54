package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RepositoryContract runs the behaviour every domain.Repository backend must
// share. newRepo must return an initialized, empty repository.
func RepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.Repository) {
	t.Helper()
	// Backends may drop sub-second precision
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("task round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		due := domain.NewDate(2025, 3, 14)
		start := now.Add(-time.Hour)
		task := &domain.Task{
			ID:                    "t1",
			UserID:                "alice",
			Title:                 "Write report",
			Description:           "Quarterly",
			Notes:                 "numbers from finance",
			CategoryID:            "work",
			Type:                  domain.TaskTypeContinuous,
			Priority:              domain.PriorityHigh,
			DueDate:               &due,
			StartTime:             &start,
			OrderIndex:            3,
			DurationMinutes:       45,
			TotalTimeSpentMinutes: 12,
			IsActive:              true,
			Created:               now,
			Updated:               now,
			Subtasks:              []*domain.Subtask{{ID: "ignored", TaskID: "t1", Title: "not stored"}},
		}
		require.NoError(t, repo.SaveTask(ctx, task))

		got, err := repo.GetTask(ctx, "t1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Write report", got.Title)
		assert.Equal(t, "numbers from finance", got.Notes)
		assert.Equal(t, domain.TaskTypeContinuous, got.Type)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, due, *got.DueDate)
		require.NotNil(t, got.StartTime)
		assert.True(t, start.Equal(*got.StartTime))
		assert.Nil(t, got.EndTime)
		assert.Nil(t, got.CompletedAt)
		assert.Equal(t, 3, got.OrderIndex)
		assert.Equal(t, 45, got.DurationMinutes)
		assert.Equal(t, 12, got.TotalTimeSpentMinutes)
		assert.True(t, got.IsActive)
		assert.True(t, now.Equal(got.Created))
		assert.Empty(t, got.Subtasks)

		subtasks, err := repo.ListSubtasks(ctx, "t1")
		require.NoError(t, err)
		assert.Empty(t, subtasks, "SaveTask does not write subtasks")

		missing, err := repo.GetTask(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update replaces", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		task := &domain.Task{ID: "t1", UserID: "alice", Title: "Old", Type: domain.TaskTypeRegular, Priority: domain.PriorityLow, Created: now, Updated: now}
		require.NoError(t, repo.SaveTask(ctx, task))

		task.Title = "New"
		task.SetCompleted(true, now.Add(time.Minute))
		require.NoError(t, repo.SaveTask(ctx, task))

		got, err := repo.GetTask(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.True(t, got.Completed)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, now.Add(time.Minute).Equal(*got.CompletedAt))
	})

	t.Run("list tasks filters and orders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for _, task := range []*domain.Task{
			{ID: "b", UserID: "alice", Title: "B", Type: domain.TaskTypeRegular, Priority: domain.PriorityMedium, OrderIndex: 1},
			{ID: "a", UserID: "alice", Title: "A", Type: domain.TaskTypeRegular, Priority: domain.PriorityMedium, OrderIndex: 0},
			{ID: "c", UserID: "alice", Title: "C", Type: domain.TaskTypeContinuous, Priority: domain.PriorityMedium},
			{ID: "d", UserID: "bob", Title: "D", Type: domain.TaskTypeRegular, Priority: domain.PriorityMedium},
		} {
			task.Created, task.Updated = now, now
			require.NoError(t, repo.SaveTask(ctx, task))
		}

		regular, err := repo.ListTasks(ctx, domain.TaskFilter{UserID: "alice", Type: domain.TaskTypeRegular})
		require.NoError(t, err)
		require.Len(t, regular, 2)
		assert.Equal(t, "a", regular[0].ID)
		assert.Equal(t, "b", regular[1].ID)

		alice, err := repo.ListTasks(ctx, domain.TaskFilter{UserID: "alice"})
		require.NoError(t, err)
		assert.Len(t, alice, 3)

		all, err := repo.ListTasks(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("delete task removes subtasks only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "t1", UserID: "alice", Title: "T", Type: domain.TaskTypeContinuous, Priority: domain.PriorityMedium, Created: now, Updated: now}))
		require.NoError(t, repo.SaveSubtask(ctx, &domain.Subtask{ID: "s1", TaskID: "t1", Title: "Outline", Created: now}))
		end := now.Add(10 * time.Minute)
		minutes := 10
		require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "ts1", TaskID: "t1", StartTime: now, EndTime: &end, DurationMinutes: &minutes}))

		require.NoError(t, repo.DeleteTask(ctx, "t1"))

		got, err := repo.GetTask(ctx, "t1")
		require.NoError(t, err)
		assert.Nil(t, got)
		st, err := repo.GetSubtask(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, st)
		sessions, err := repo.ListSessions(ctx, domain.SessionFilter{TaskIDs: []string{"t1"}})
		require.NoError(t, err)
		assert.Len(t, sessions, 1, "sessions outlive their task")

		require.NoError(t, repo.DeleteSessionsByTask(ctx, "t1"))
		sessions, err = repo.ListSessions(ctx, domain.SessionFilter{})
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("save task order is all or nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: id, UserID: "alice", Title: id, Type: domain.TaskTypeRegular, Priority: domain.PriorityMedium, OrderIndex: i, Created: now, Updated: now}))
		}

		require.NoError(t, repo.SaveTaskOrder(ctx, []domain.TaskOrder{{TaskID: "b", OrderIndex: 0}, {TaskID: "a", OrderIndex: 1}, {TaskID: "c", OrderIndex: 2}}))
		tasks, err := repo.ListTasks(ctx, domain.TaskFilter{UserID: "alice"})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, []string{"b", "a", "c"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})

		err = repo.SaveTaskOrder(ctx, []domain.TaskOrder{{TaskID: "c", OrderIndex: 0}, {TaskID: "missing", OrderIndex: 1}})
		require.Error(t, err)
		got, err := repo.GetTask(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 2, got.OrderIndex, "failed batch leaves no partial order")
	})

	t.Run("subtasks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.SaveSubtask(ctx, &domain.Subtask{ID: "s2", TaskID: "t1", Title: "Draft", OrderIndex: 1, Created: now}))
		require.NoError(t, repo.SaveSubtask(ctx, &domain.Subtask{ID: "s1", TaskID: "t1", Title: "Outline", OrderIndex: 0, Created: now}))
		require.NoError(t, repo.SaveSubtask(ctx, &domain.Subtask{ID: "s3", TaskID: "t2", Title: "Other", Created: now}))

		list, err := repo.ListSubtasks(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "s1", list[0].ID)

		done := now.Add(time.Minute)
		list[0].Completed = true
		list[0].CompletedAt = &done
		require.NoError(t, repo.SaveSubtask(ctx, list[0]))
		got, err := repo.GetSubtask(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.True(t, done.Equal(*got.CompletedAt))

		require.NoError(t, repo.DeleteSubtask(ctx, "s1"))
		all, err := repo.ListSubtasks(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("categories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.SaveCategory(ctx, &domain.Category{ID: "k2", UserID: "alice", Name: "Home", Color: "#10B981", Created: now.Add(time.Second)}))
		require.NoError(t, repo.SaveCategory(ctx, &domain.Category{ID: "k1", UserID: "alice", Name: "Work", Color: "#EF4444", Created: now}))
		require.NoError(t, repo.SaveCategory(ctx, &domain.Category{ID: "k3", UserID: "bob", Name: "Bob", Color: "#8B5CF6", Created: now}))

		list, err := repo.ListCategories(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Work", list[0].Name)
		assert.Equal(t, "#EF4444", list[0].Color)

		require.NoError(t, repo.DeleteCategory(ctx, "k1"))
		list, err = repo.ListCategories(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("sessions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		end := now.Add(25 * time.Minute)
		minutes := 25
		require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "s1", TaskID: "t1", StartTime: now, EndTime: &end, DurationMinutes: &minutes}))
		open := &domain.TimeSession{ID: "s2", TaskID: "t1", StartTime: now.Add(time.Hour)}
		require.NoError(t, repo.SaveSession(ctx, open))
		require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "s3", TaskID: "t2", StartTime: now}))

		list, err := repo.ListSessions(ctx, domain.SessionFilter{TaskIDs: []string{"t1"}})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "s1", list[0].ID)
		require.NotNil(t, list[0].DurationMinutes)
		assert.Equal(t, 25, *list[0].DurationMinutes)
		assert.True(t, end.Equal(*list[0].EndTime))

		openOnly, err := repo.ListSessions(ctx, domain.SessionFilter{OpenOnly: true})
		require.NoError(t, err)
		assert.Len(t, openOnly, 2)

		open.Close(now.Add(time.Hour + 5*time.Minute))
		require.NoError(t, repo.SaveSession(ctx, open))
		openOnly, err = repo.ListSessions(ctx, domain.SessionFilter{TaskIDs: []string{"t1"}, OpenOnly: true})
		require.NoError(t, err)
		assert.Empty(t, openOnly)

		require.NoError(t, repo.DeleteSession(ctx, "s3"))
		all, err := repo.ListSessions(ctx, domain.SessionFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

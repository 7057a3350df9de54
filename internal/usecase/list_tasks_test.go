package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskIDs(tasks []*domain.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestListTasks_Execute_TodayView(t *testing.T) {
	f := newFixture(t) // 2025-03-10
	today := domain.NewDate(2025, 3, 10)
	f.seedTask(t, &domain.Task{ID: "overdue", Title: "Overdue", DueDate: ptr(today.AddDays(-1)), OrderIndex: 0})
	f.seedTask(t, &domain.Task{ID: "today", Title: "Today", DueDate: ptr(today), OrderIndex: 1})
	f.seedTask(t, &domain.Task{ID: "later", Title: "Later", DueDate: ptr(today.AddDays(3)), OrderIndex: 2})
	f.seedTask(t, &domain.Task{ID: "none", Title: "Someday", OrderIndex: 3})
	f.seedTask(t, &domain.Task{ID: "done", Title: "Done", DueDate: ptr(today), Completed: true, OrderIndex: 4})
	f.seedTask(t, &domain.Task{ID: "cont", Title: "Focus", Type: domain.TaskTypeContinuous, DueDate: ptr(today)})

	out, err := NewListTasks(f.store, f.clock).Execute(context.Background(), ListTasksInput{
		Filters: domain.Filters{View: domain.ViewToday},
	})

	require.NoError(t, err)
	assert.Equal(t, today, out.Today)
	assert.Equal(t, []string{"today"}, taskIDs(out.Tasks), "overdue tasks only show under all")
	assert.Equal(t, 1, out.Views[domain.ViewToday])
	assert.Equal(t, 1, out.Views[domain.ViewUpcoming])
	assert.Equal(t, 4, out.Views[domain.ViewAll])
	assert.Equal(t, 1, out.Views[domain.ViewCompleted])
}

func TestListTasks_Execute_Defaults(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, &domain.Task{ID: "b", Title: "B", DueDate: ptr(domain.NewDate(2025, 4, 1))})
	f.seedTask(t, &domain.Task{ID: "a", Title: "A", DueDate: ptr(domain.NewDate(2025, 3, 20)), OrderIndex: 1})
	f.seedTask(t, &domain.Task{ID: "n", Title: "No due", OrderIndex: 2})

	out, err := NewListTasks(f.store, f.clock).Execute(context.Background(), ListTasksInput{})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "n"}, taskIDs(out.Tasks), "all view, due date ascending, undated last")
}

func TestListTasks_Execute_FiltersAndSort(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, &domain.Task{ID: "1", Title: "Email Alice", Priority: domain.PriorityLow, CategoryID: "work"})
	f.seedTask(t, &domain.Task{ID: "2", Title: "email Bob", Priority: domain.PriorityHigh, CategoryID: "work", OrderIndex: 1})
	f.seedTask(t, &domain.Task{ID: "3", Title: "Email Carol", Priority: domain.PriorityHigh, CategoryID: "home", OrderIndex: 2})
	f.seedTask(t, &domain.Task{ID: "4", Title: "Groceries", Priority: domain.PriorityHigh, CategoryID: "work", OrderIndex: 3})

	out, err := NewListTasks(f.store, f.clock).Execute(context.Background(), ListTasksInput{
		Filters: domain.Filters{View: domain.ViewAll, CategoryID: "work", Search: "EMAIL"},
		SortBy:  domain.SortByPriority,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, taskIDs(out.Tasks))
}

func TestListTasks_Execute_ContinuousStatus(t *testing.T) {
	f := newFixture(t)
	active := continuousTask("active")
	active.IsActive = true
	paused := continuousTask("paused")
	paused.OrderIndex = 1
	done := continuousTask("done")
	done.Completed = true
	done.IsActive = true
	done.OrderIndex = 2
	f.seedTask(t, active)
	f.seedTask(t, paused)
	f.seedTask(t, done)

	uc := NewListTasks(f.store, f.clock)
	tests := []struct {
		status domain.TimerFilter
		view   domain.View
		want   []string
	}{
		{status: domain.TimerActive, view: domain.ViewAll, want: []string{"active"}},
		{status: domain.TimerPaused, view: domain.ViewAll, want: []string{"paused"}},
		{status: domain.TimerCompleted, view: domain.ViewCompleted, want: []string{"done"}},
		{status: domain.TimerAll, view: domain.ViewAll, want: []string{"active", "paused"}},
		{status: domain.TimerActive, view: domain.ViewCompleted, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.view), func(t *testing.T) {
			out, err := uc.Execute(context.Background(), ListTasksInput{
				Type:    domain.TaskTypeContinuous,
				Status:  tt.status,
				Filters: domain.Filters{View: tt.view},
				SortBy:  domain.SortByCreatedAt,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, taskIDs(out.Tasks))
		})
	}
}

func TestListTasks_Execute_InvalidInput(t *testing.T) {
	f := newFixture(t)
	uc := NewListTasks(f.store, f.clock)

	_, err := uc.Execute(context.Background(), ListTasksInput{Type: "weekly"})
	assert.ErrorIs(t, err, domain.ErrInvalidTaskType)

	_, err = uc.Execute(context.Background(), ListTasksInput{Filters: domain.Filters{View: "tomorrow"}})
	assert.ErrorIs(t, err, domain.ErrInvalidView)

	_, err = uc.Execute(context.Background(), ListTasksInput{SortBy: "title"})
	assert.ErrorIs(t, err, domain.ErrInvalidSort)
}

func TestShowTask_Execute(t *testing.T) {
	f := newFixture(t)
	f.seedCategory(t, &domain.Category{ID: "work", Name: "Work", Color: "#EF4444"})
	task := continuousTask("c1")
	task.CategoryID = "work"
	task.TotalTimeSpentMinutes = 30
	f.seedTask(t, task)
	f.seedSubtask(t, &domain.Subtask{ID: "s1", TaskID: "c1", Title: "Outline"})
	end := f.clock.NowTime.Add(-time.Hour)
	f.seedSession(t, &domain.TimeSession{ID: "old", TaskID: "c1", StartTime: end.Add(-30 * time.Minute), EndTime: &end, DurationMinutes: ptr(30)})

	_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	out, err := NewShowTask(f.store, f.clock).Execute(context.Background(), ShowTaskInput{TaskID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, "Work", out.Category.Name)
	assert.Len(t, out.Task.Subtasks, 1)
	require.Len(t, out.Sessions, 2)
	assert.Equal(t, "old", out.Sessions[0].ID)
	assert.True(t, out.Sessions[1].IsOpen())
	assert.True(t, out.Timer.Active)
	assert.Equal(t, 15*time.Minute, out.Timer.Elapsed)
	assert.InDelta(t, 25.0, out.Timer.Progress, 0.001)
	assert.Equal(t, 30, out.Timer.TotalMinutes)
}

func TestShowTask_Execute_Regular(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, &domain.Task{ID: "r1", Title: "Report"})

	out, err := NewShowTask(f.store, f.clock).Execute(context.Background(), ShowTaskInput{TaskID: "r1"})

	require.NoError(t, err)
	assert.Nil(t, out.Category)
	assert.Empty(t, out.Sessions)
	assert.False(t, out.Timer.Active)

	_, err = NewShowTask(f.store, f.clock).Execute(context.Background(), ShowTaskInput{TaskID: "nope"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestGetElapsed_Execute(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))
	idle := continuousTask("c2")
	idle.OrderIndex = 1
	f.seedTask(t, idle)
	f.seedTask(t, &domain.Task{ID: "r1", Title: "Report"})
	_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	uc := NewGetElapsed(f.store, f.clock)

	all, err := uc.Execute(context.Background(), GetElapsedInput{})
	require.NoError(t, err)
	require.Len(t, all.Readings, 1)
	assert.Equal(t, "c1", all.Readings[0].TaskID)
	assert.Equal(t, 2*time.Hour, all.Readings[0].Elapsed)
	assert.InDelta(t, 100.0, all.Readings[0].Progress, 0.001, "progress is capped")

	one, err := uc.Execute(context.Background(), GetElapsedInput{TaskID: "c2"})
	require.NoError(t, err)
	require.Len(t, one.Readings, 1)
	assert.Zero(t, one.Readings[0].Elapsed)
	assert.False(t, one.Readings[0].Active)

	_, err = uc.Execute(context.Background(), GetElapsedInput{TaskID: "r1"})
	assert.ErrorIs(t, err, domain.ErrNotContinuous)
}

func TestTaskStats_Execute(t *testing.T) {
	f := newFixture(t)
	today := domain.NewDate(2025, 3, 10)
	f.seedTask(t, &domain.Task{ID: "r1", Title: "A", DueDate: ptr(today), Priority: domain.PriorityHigh, CategoryID: "work"})
	f.seedTask(t, &domain.Task{ID: "r2", Title: "B", Completed: true, CategoryID: "work"})
	active := continuousTask("c1")
	active.IsActive = true
	active.TotalTimeSpentMinutes = 40
	active.CategoryID = "work"
	f.seedTask(t, active)
	paused := continuousTask("c2")
	paused.TotalTimeSpentMinutes = 20
	f.seedTask(t, paused)

	out, err := NewTaskStats(f.store, f.clock).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, out.Views[domain.ViewToday])
	assert.Equal(t, 1, out.Views[domain.ViewCompleted])
	assert.Equal(t, 1, out.Priorities[domain.PriorityHigh])
	assert.Equal(t, 2, out.Categories["work"])
	assert.Equal(t, 1, out.Continuous.Active)
	assert.Equal(t, 1, out.Continuous.Paused)
	assert.Equal(t, 2, out.Continuous.Total)
	assert.Equal(t, 60, out.Continuous.TotalMinutes)
}

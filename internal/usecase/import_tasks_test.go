package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taskFileYAML = `tasks:
  - title: Write report
    priority: high
    due: 2025-03-14
    category: work
    subtasks: [Outline, Draft]
  - title: Deep work
    type: continuous
    duration: 90
    category: Reading
  - title: Old chore
    completed: true
`

func (f *fixture) importTasks() *ImportTasks {
	return NewImportTasks(f.newTask(), f.newCategory(), f.editTask(), f.store)
}

func TestImportTasks_Execute(t *testing.T) {
	f := newFixture(t)
	f.seedCategory(t, &domain.Category{ID: "work", Name: "Work", Color: "#EF4444"})

	out, err := f.importTasks().Execute(context.Background(), ImportTasksInput{Content: []byte(taskFileYAML)})

	require.NoError(t, err)
	require.Len(t, out.Tasks, 3)
	assert.Equal(t, []string{"Reading"}, out.CreatedCategories, "category names match ignoring case")

	report := out.Tasks[0]
	assert.Equal(t, "work", report.CategoryID)
	assert.Equal(t, domain.PriorityHigh, report.Priority)
	assert.Equal(t, "2025-03-14", report.DueDate.String())
	assert.Len(t, report.Subtasks, 2)

	deep := out.Tasks[1]
	assert.Equal(t, domain.TaskTypeContinuous, deep.Type)
	assert.Equal(t, 90, deep.DurationMinutes)
	assert.NotEmpty(t, deep.CategoryID)
	assert.NotEqual(t, "work", deep.CategoryID)

	chore := out.Tasks[2]
	assert.True(t, chore.Completed)
	assert.NotNil(t, chore.CompletedAt)

	assert.Len(t, f.store.Tasks(), 3)
	assert.Len(t, f.store.Categories(), 2)
}

func TestImportTasks_Execute_DryRun(t *testing.T) {
	f := newFixture(t)

	out, err := f.importTasks().Execute(context.Background(), ImportTasksInput{Content: []byte(taskFileYAML), DryRun: true})

	require.NoError(t, err)
	assert.Len(t, out.Drafts, 3)
	assert.Empty(t, out.Tasks)
	assert.Empty(t, f.repo.Tasks)
	assert.Empty(t, f.repo.Categories)
}

func TestImportTasks_Execute_InvalidFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.importTasks().Execute(context.Background(), ImportTasksInput{Content: []byte("tasks:\n  - title: ''\n")})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = f.importTasks().Execute(context.Background(), ImportTasksInput{Content: []byte("   ")})
	assert.ErrorIs(t, err, domain.ErrEmptyFile)

	assert.Empty(t, f.repo.Tasks)
}

func TestExportTasks_Execute_RoundTrip(t *testing.T) {
	src := newFixture(t)
	_, err := src.importTasks().Execute(context.Background(), ImportTasksInput{Content: []byte(taskFileYAML)})
	require.NoError(t, err)

	exported, err := NewExportTasks(src.store).Execute(context.Background(), ExportTasksInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, exported.Count)

	dst := newFixture(t)
	out, err := dst.importTasks().Execute(context.Background(), ImportTasksInput{Content: exported.Content})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 3)
	assert.ElementsMatch(t, []string{"work", "Reading"}, out.CreatedCategories)

	titles := make([]string, 0, 3)
	for _, task := range dst.store.Tasks() {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"Write report", "Deep work", "Old chore"}, titles)
}

func TestExportTasks_Execute_Partition(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, &domain.Task{ID: "r1", Title: "Report"})
	f.seedTask(t, continuousTask("c1"))

	out, err := NewExportTasks(f.store).Execute(context.Background(), ExportTasksInput{Type: domain.TaskTypeContinuous})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	drafts, err := domain.ParseTaskDrafts(out.Content)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Deep work c1", drafts[0].Title)
	assert.Equal(t, 60, drafts[0].Duration)
}

func TestExportTasks_Execute_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := NewExportTasks(f.store).Execute(context.Background(), ExportTasksInput{})

	assert.ErrorIs(t, err, domain.ErrNothingToExport)
}

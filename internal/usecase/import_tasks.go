package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
)

// ImportTasksInput contains the parameters for importing a task file.
type ImportTasksInput struct {
	Content []byte // YAML task file content
	DryRun  bool   // Parse and validate without creating anything
}

// ImportTasksOutput contains the result of importing a task file.
// Fields are ordered to minimize memory padding.
type ImportTasksOutput struct {
	Drafts            []domain.TaskDraft // Parsed drafts
	Tasks             []*domain.Task     // Created tasks (empty in dry-run mode)
	CreatedCategories []string           // Names of categories created on the way
}

// ImportTasks is the use case for creating tasks from a YAML task file.
// Categories are matched by name, ignoring case; unknown names are created.
type ImportTasks struct {
	newTask     *NewTask
	newCategory *NewCategory
	edit        *EditTask
	store       *state.Store
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(newTask *NewTask, newCategory *NewCategory, edit *EditTask, store *state.Store) *ImportTasks {
	return &ImportTasks{
		newTask:     newTask,
		newCategory: newCategory,
		edit:        edit,
		store:       store,
	}
}

// Execute parses the file and creates one task per draft.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}
	out := &ImportTasksOutput{Drafts: drafts}
	if in.DryRun {
		return out, nil
	}

	byName := make(map[string]string)
	for _, c := range uc.store.Categories() {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	for i, d := range drafts {
		categoryID := ""
		if d.Category != "" {
			key := strings.ToLower(d.Category)
			id, ok := byName[key]
			if !ok {
				created, err := uc.newCategory.Execute(ctx, NewCategoryInput{Name: d.Category})
				if err != nil {
					return out, fmt.Errorf("task %d: create category: %w", i+1, err)
				}
				id = created.Category.ID
				byName[key] = id
				out.CreatedCategories = append(out.CreatedCategories, created.Category.Name)
			}
			categoryID = id
		}

		created, err := uc.newTask.Execute(ctx, NewTaskInput{
			Title:       d.Title,
			Description: d.Description,
			Notes:       d.Notes,
			CategoryID:  categoryID,
			Type:        d.Type,
			Priority:    d.Priority,
			DueDate:     d.Due,
			Duration:    d.Duration,
			Subtasks:    d.Subtasks,
		})
		if err != nil {
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
		task := created.Task

		if d.Completed {
			completed := true
			edited, err := uc.edit.Execute(ctx, EditTaskInput{TaskID: task.ID, Completed: &completed})
			if err != nil {
				return out, fmt.Errorf("task %d: %w", i+1, err)
			}
			task = edited.Task
		}
		out.Tasks = append(out.Tasks, task)
	}

	return out, nil
}

// ExportTasksInput contains the parameters for exporting tasks.
type ExportTasksInput struct {
	Type domain.TaskType // Partition to export (empty = both)
}

// ExportTasksOutput contains the exported task file.
type ExportTasksOutput struct {
	Content []byte // YAML task file content
	Count   int    // Number of exported tasks
}

// ExportTasks is the use case for writing tasks as a YAML task file.
type ExportTasks struct {
	store *state.Store
}

// NewExportTasks creates a new ExportTasks use case.
func NewExportTasks(store *state.Store) *ExportTasks {
	return &ExportTasks{store: store}
}

// Execute renders the tasks in order. Time sessions are not exported.
func (uc *ExportTasks) Execute(_ context.Context, in ExportTasksInput) (*ExportTasksOutput, error) {
	if in.Type != "" && !in.Type.IsValid() {
		return nil, domain.ErrInvalidTaskType
	}
	tasks := uc.store.Tasks()
	if in.Type != "" {
		tasks = uc.store.TasksByType(in.Type)
	}
	if len(tasks) == 0 {
		return nil, domain.ErrNothingToExport
	}

	drafts := make([]domain.TaskDraft, 0, len(tasks))
	for _, t := range tasks {
		name := ""
		if c := uc.store.Category(t.CategoryID); c != nil {
			name = c.Name
		}
		drafts = append(drafts, domain.DraftFromTask(t, name))
	}

	content, err := domain.MarshalTaskDrafts(drafts)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return &ExportTasksOutput{Content: content, Count: len(drafts)}, nil
}

package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskDraft represents a task read from or written to a YAML task file.
// Category is referenced by name so files are portable between users.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	Due         *Date    `yaml:"due,omitempty"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Notes       string   `yaml:"notes,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Type        TaskType `yaml:"type,omitempty"`
	Priority    Priority `yaml:"priority,omitempty"`
	Subtasks    []string `yaml:"subtasks,omitempty"`
	Duration    int      `yaml:"duration,omitempty"`
	Completed   bool     `yaml:"completed,omitempty"`
}

// taskFile is the top-level structure of a task file.
type taskFile struct {
	Tasks []TaskDraft `yaml:"tasks"`
}

// ParseTaskDrafts parses a YAML task file.
//
// Format:
//
//	tasks:
//	  - title: Write report
//	    priority: high
//	    due: 2026-10-20
//	    category: Work
//	    subtasks: [Outline, Draft]
//	  - title: Deep work
//	    type: continuous
//	    duration: 90
func ParseTaskDrafts(content []byte) ([]TaskDraft, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, ErrEmptyFile
	}

	var file taskFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if len(file.Tasks) == 0 {
		return nil, ErrNoTasksInFile
	}

	for i := range file.Tasks {
		if err := file.Tasks[i].normalize(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	return file.Tasks, nil
}

// MarshalTaskDrafts renders drafts as a YAML task file.
func MarshalTaskDrafts(drafts []TaskDraft) ([]byte, error) {
	return yaml.Marshal(taskFile{Tasks: drafts})
}

// DraftFromTask converts a task into a draft. categoryName is the name of the
// task's category, or "" if it has none.
func DraftFromTask(t *Task, categoryName string) TaskDraft {
	d := TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		Notes:       t.Notes,
		Category:    categoryName,
		Type:        t.Type,
		Priority:    t.Priority,
		Duration:    t.DurationMinutes,
		Completed:   t.Completed,
		Due:         clonePtr(t.DueDate),
	}
	for _, st := range t.Subtasks {
		d.Subtasks = append(d.Subtasks, st.Title)
	}
	return d
}

// normalize fills defaults and validates the draft.
func (d *TaskDraft) normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return ErrEmptyTitle
	}
	if d.Type == "" {
		d.Type = TaskTypeRegular
	}
	if !d.Type.IsValid() {
		return ErrInvalidTaskType
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if d.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

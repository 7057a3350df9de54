// Package domain contains core business entities and interfaces.
package domain

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TaskType partitions tasks into independently ordered lists.
type TaskType string

const (
	TaskTypeRegular    TaskType = "regular"    // Due-date driven task
	TaskTypeContinuous TaskType = "continuous" // Timed task with sessions
)

// AllTaskTypes returns all valid task types.
func AllTaskTypes() []TaskType {
	return []TaskType{TaskTypeRegular, TaskTypeContinuous}
}

// IsValid returns true if the type is a known value.
func (t TaskType) IsValid() bool {
	return t == TaskTypeRegular || t == TaskTypeContinuous
}

// ParseTaskType parses a task type name.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(s)
	if !t.IsValid() {
		return "", ErrInvalidTaskType
	}
	return t, nil
}

// DefaultDurationMinutes is the planned duration of a new continuous task.
const DefaultDurationMinutes = 60

// Task represents a regular or continuous task owned by a user.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created               time.Time  `json:"created" yaml:"created"`
	Updated               time.Time  `json:"updated" yaml:"updated"`
	DueDate               *Date      `json:"dueDate,omitempty" yaml:"due,omitempty"`
	ReminderAt            *time.Time `json:"reminderAt,omitempty" yaml:"reminderAt,omitempty"`
	CompletedAt           *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	StartTime             *time.Time `json:"startTime,omitempty" yaml:"startTime,omitempty"` // Most recent session start (or planned start)
	EndTime               *time.Time `json:"endTime,omitempty" yaml:"endTime,omitempty"`     // Most recent session stop (or planned end)
	ID                    string     `json:"id" yaml:"id"`
	UserID                string     `json:"userID" yaml:"userID"`
	Title                 string     `json:"title" yaml:"title"`
	Description           string     `json:"description,omitempty" yaml:"description,omitempty"`
	Notes                 string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	CategoryID            string     `json:"categoryID,omitempty" yaml:"categoryID,omitempty"` // Weak reference, empty = uncategorized
	Type                  TaskType   `json:"type" yaml:"type"`
	Priority              Priority   `json:"priority" yaml:"priority"`
	Subtasks              []*Subtask `json:"-" yaml:"-"` // Stored separately, attached on read
	OrderIndex            int        `json:"orderIndex" yaml:"orderIndex"`
	DurationMinutes       int        `json:"durationMinutes,omitempty" yaml:"durationMinutes,omitempty"`
	TotalTimeSpentMinutes int        `json:"totalTimeSpentMinutes,omitempty" yaml:"totalTimeSpentMinutes,omitempty"`
	Completed             bool       `json:"completed" yaml:"completed"`
	IsActive              bool       `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

// IsContinuous returns true if the task is tracked with time sessions.
func (t *Task) IsContinuous() bool {
	return t.Type == TaskTypeContinuous
}

// SetCompleted applies the completion rule: CompletedAt is set exactly when
// completed turns true and cleared when it turns false.
// Returns true if the value changed.
func (t *Task) SetCompleted(completed bool, now time.Time) bool {
	if t.Completed == completed {
		return false
	}
	t.Completed = completed
	if completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return true
}

// Elapsed returns the running time of the current session.
// It is zero for inactive tasks and never negative.
func (t *Task) Elapsed(now time.Time) time.Duration {
	if !t.IsActive || t.StartTime == nil {
		return 0
	}
	d := now.Sub(*t.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Progress returns the elapsed share of the planned duration, in percent,
// capped at 100. Inactive tasks and tasks without a plan report 0.
func (t *Task) Progress(now time.Time) float64 {
	if !t.IsActive || t.DurationMinutes <= 0 {
		return 0
	}
	planned := time.Duration(t.DurationMinutes) * time.Minute
	return math.Min(100, float64(t.Elapsed(now))/float64(planned)*100)
}

// SubtaskProgress returns the number of completed subtasks and the total.
func (t *Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// Clone returns a deep copy of the task, including its subtasks.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.DueDate = clonePtr(t.DueDate)
	c.ReminderAt = clonePtr(t.ReminderAt)
	c.CompletedAt = clonePtr(t.CompletedAt)
	c.StartTime = clonePtr(t.StartTime)
	c.EndTime = clonePtr(t.EndTime)
	if t.Subtasks != nil {
		c.Subtasks = make([]*Subtask, len(t.Subtasks))
		for i, st := range t.Subtasks {
			c.Subtasks[i] = st.Clone()
		}
	}
	return &c
}

// Subtask is a checklist item owned by exactly one task.
// Fields are ordered to minimize memory padding.
type Subtask struct {
	Created     time.Time  `json:"created" yaml:"created"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	ID          string     `json:"id" yaml:"id"`
	TaskID      string     `json:"taskID" yaml:"taskID"`
	Title       string     `json:"title" yaml:"title"`
	OrderIndex  int        `json:"orderIndex" yaml:"orderIndex"`
	Completed   bool       `json:"completed" yaml:"completed"`
}

// SetCompleted applies the same completion rule as Task.SetCompleted.
func (s *Subtask) SetCompleted(completed bool, now time.Time) bool {
	if s.Completed == completed {
		return false
	}
	s.Completed = completed
	if completed {
		at := now
		s.CompletedAt = &at
	} else {
		s.CompletedAt = nil
	}
	return true
}

// Clone returns a copy of the subtask.
func (s *Subtask) Clone() *Subtask {
	if s == nil {
		return nil
	}
	c := *s
	c.CompletedAt = clonePtr(s.CompletedAt)
	return &c
}

// SortSubtasks orders subtasks by OrderIndex, then creation time, then ID.
func SortSubtasks(subtasks []*Subtask) {
	slices.SortFunc(subtasks, func(a, b *Subtask) int {
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex - b.OrderIndex
		}
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Category groups tasks. Tasks reference categories weakly.
// Fields are ordered to minimize memory padding.
type Category struct {
	Created time.Time `json:"created" yaml:"created"`
	ID      string    `json:"id" yaml:"id"`
	UserID  string    `json:"userID" yaml:"userID"`
	Name    string    `json:"name" yaml:"name"`
	Color   string    `json:"color" yaml:"color"`
}

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6B7280"

// IsValidColor reports whether s is a #RRGGBB hex color.
func IsValidColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// DefaultCategories returns the categories seeded into an empty store.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Work", Color: "#EF4444"},
		{Name: "Personal", Color: "#10B981"},
		{Name: "Projects", Color: "#8B5CF6"},
	}
}

// TaskOrder assigns an order index to a task.
type TaskOrder struct {
	TaskID     string
	OrderIndex int
}

// NewID returns a fresh, time-ordered unique identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ShortIDLen is the number of trailing characters shown for an identifier.
// UUIDv7 identifiers share their leading timestamp bits, so the random tail
// is the part that tells tasks apart.
const ShortIDLen = 8

// ShortID returns the trailing block of an identifier for display.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[len(id)-ShortIDLen:]
	}
	return id
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

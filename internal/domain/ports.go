package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	// Returns true if the store was newly created.
	Initialize() (bool, error)
}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	UserID string   // Owning user (empty = all users)
	Type   TaskType // Partition (empty = both)
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	// GetTask retrieves a task by ID. Returns nil if not found.
	// Subtasks are not attached.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks retrieves tasks matching the filter.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// SaveTask creates or replaces a task. Subtasks are not written.
	SaveTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task and its subtasks.
	DeleteTask(ctx context.Context, id string) error

	// SaveTaskOrder rewrites order indexes as one batch: all or none.
	SaveTaskOrder(ctx context.Context, orders []TaskOrder) error
}

// SubtaskRepository manages subtask persistence.
type SubtaskRepository interface {
	// GetSubtask retrieves a subtask by ID. Returns nil if not found.
	GetSubtask(ctx context.Context, id string) (*Subtask, error)

	// ListSubtasks retrieves the subtasks of the given tasks.
	ListSubtasks(ctx context.Context, taskIDs ...string) ([]*Subtask, error)

	// SaveSubtask creates or replaces a subtask.
	SaveSubtask(ctx context.Context, subtask *Subtask) error

	// DeleteSubtask removes a subtask.
	DeleteSubtask(ctx context.Context, id string) error
}

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	// ListCategories retrieves the categories of a user.
	ListCategories(ctx context.Context, userID string) ([]*Category, error)

	// SaveCategory creates or replaces a category.
	SaveCategory(ctx context.Context, category *Category) error

	// DeleteCategory removes a category. Tasks keep their reference.
	DeleteCategory(ctx context.Context, id string) error
}

// SessionFilter specifies criteria for listing time sessions.
type SessionFilter struct {
	TaskIDs  []string // Owning tasks (empty = all)
	OpenOnly bool     // Only sessions without an end time
}

// SessionRepository manages time session persistence.
type SessionRepository interface {
	// ListSessions retrieves sessions matching the filter.
	ListSessions(ctx context.Context, filter SessionFilter) ([]*TimeSession, error)

	// SaveSession creates or replaces a session.
	SaveSession(ctx context.Context, session *TimeSession) error

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, id string) error

	// DeleteSessionsByTask removes every session of a task.
	DeleteSessionsByTask(ctx context.Context, taskID string) error
}

// Repository is the persistent store boundary.
type Repository interface {
	TaskRepository
	SubtaskRepository
	CategoryRepository
	SessionRepository
}

// Identity supplies the authenticated user.
type Identity interface {
	// CurrentUser returns the authenticated user ID, or "" when anonymous.
	CurrentUser() string

	// Subscribe registers fn to be called with the new user ID whenever the
	// authenticated identity changes. The returned function unsubscribes.
	Subscribe(fn func(userID string)) (unsubscribe func())
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (local + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigInfo describes a configuration file.
type ConfigInfo struct {
	Path    string // Absolute path to the file
	Content string // File content (empty if missing)
	Exists  bool   // Whether the file exists
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetLocalConfigInfo returns information about the data-dir config file.
	GetLocalConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitLocalConfig writes the commented template to the data-dir config.
	InitLocalConfig(cfg *Config) error

	// InitGlobalConfig writes the commented template to the global config.
	InitGlobalConfig(cfg *Config) error
}

// Logger provides task-aware logging.
// taskID is "" for entries that are not about a single task.
type Logger interface {
	Info(taskID, category, msg string)
	Debug(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Package jsonstore provides a JSON file-based implementation of domain.Repository.
package jsonstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/runoshun/tempo/internal/domain"
)

// schemaVersion is written to new files and checked on read.
const schemaVersion = 1

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks      map[string]*domain.Task        `json:"tasks"`
	Subtasks   map[string]*domain.Subtask     `json:"subtasks"`
	Categories map[string]*domain.Category    `json:"categories"`
	Sessions   map[string]*domain.TimeSession `json:"sessions"`
	Meta       meta                           `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	Version int `json:"version"`
}

// Store implements domain.Repository using a JSON file.
// Every call reads the whole file under a flock; writes replace it atomically.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist until Initialize is called.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(_ context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		task = data.Tasks[id]
		return nil
	})
	return task, err
}

// ListTasks retrieves tasks matching the filter, ordered by order index.
func (s *Store) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		for _, t := range data.Tasks {
			if filter.UserID != "" && t.UserID != filter.UserID {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			tasks = append(tasks, t)
		}
		return nil
	})

	// Sort for consistent ordering
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if a.OrderIndex != b.OrderIndex {
			return cmp.Compare(a.OrderIndex, b.OrderIndex)
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return tasks, err
}

// SaveTask creates or updates a task. Attached subtasks are not written.
func (s *Store) SaveTask(_ context.Context, task *domain.Task) error {
	if task.ID == "" {
		return domain.ErrMissingID
	}
	return s.withLockWrite(func(data *storeData) error {
		c := task.Clone()
		c.Subtasks = nil
		data.Tasks[c.ID] = c
		return nil
	})
}

// DeleteTask removes a task and its subtasks.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Tasks, id)
		for sid, st := range data.Subtasks {
			if st.TaskID == id {
				delete(data.Subtasks, sid)
			}
		}
		return nil
	})
}

// SaveTaskOrder rewrites order indexes in one file write.
// An unknown id fails the whole batch before anything is written.
func (s *Store) SaveTaskOrder(_ context.Context, orders []domain.TaskOrder) error {
	return s.withLockWrite(func(data *storeData) error {
		for _, o := range orders {
			if _, ok := data.Tasks[o.TaskID]; !ok {
				return fmt.Errorf("task %s: %w", domain.ShortID(o.TaskID), domain.ErrTaskNotFound)
			}
		}
		for _, o := range orders {
			data.Tasks[o.TaskID].OrderIndex = o.OrderIndex
		}
		return nil
	})
}

// GetSubtask retrieves a subtask by ID.
func (s *Store) GetSubtask(_ context.Context, id string) (*domain.Subtask, error) {
	var subtask *domain.Subtask
	err := s.withLock(func(data *storeData) error {
		subtask = data.Subtasks[id]
		return nil
	})
	return subtask, err
}

// ListSubtasks retrieves the subtasks of the given tasks (all when none given).
func (s *Store) ListSubtasks(_ context.Context, taskIDs ...string) ([]*domain.Subtask, error) {
	var subtasks []*domain.Subtask
	err := s.withLock(func(data *storeData) error {
		for _, st := range data.Subtasks {
			if len(taskIDs) > 0 && !slices.Contains(taskIDs, st.TaskID) {
				continue
			}
			subtasks = append(subtasks, st)
		}
		return nil
	})
	domain.SortSubtasks(subtasks)
	return subtasks, err
}

// SaveSubtask creates or updates a subtask.
func (s *Store) SaveSubtask(_ context.Context, subtask *domain.Subtask) error {
	if subtask.ID == "" {
		return domain.ErrMissingID
	}
	return s.withLockWrite(func(data *storeData) error {
		data.Subtasks[subtask.ID] = subtask.Clone()
		return nil
	})
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(_ context.Context, id string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Subtasks, id)
		return nil
	})
}

// ListCategories retrieves the categories of a user, oldest first.
func (s *Store) ListCategories(_ context.Context, userID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.withLock(func(data *storeData) error {
		for _, c := range data.Categories {
			if userID != "" && c.UserID != userID {
				continue
			}
			categories = append(categories, c)
		}
		return nil
	})
	slices.SortFunc(categories, func(a, b *domain.Category) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return categories, err
}

// SaveCategory creates or updates a category.
func (s *Store) SaveCategory(_ context.Context, category *domain.Category) error {
	if category.ID == "" {
		return domain.ErrMissingID
	}
	return s.withLockWrite(func(data *storeData) error {
		c := *category
		data.Categories[c.ID] = &c
		return nil
	})
}

// DeleteCategory removes a category. Tasks keep their reference.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Categories, id)
		return nil
	})
}

// ListSessions retrieves sessions matching the filter, ordered by start.
func (s *Store) ListSessions(_ context.Context, filter domain.SessionFilter) ([]*domain.TimeSession, error) {
	var sessions []*domain.TimeSession
	err := s.withLock(func(data *storeData) error {
		for _, ts := range data.Sessions {
			if len(filter.TaskIDs) > 0 && !slices.Contains(filter.TaskIDs, ts.TaskID) {
				continue
			}
			if filter.OpenOnly && !ts.IsOpen() {
				continue
			}
			sessions = append(sessions, ts)
		}
		return nil
	})
	slices.SortFunc(sessions, func(a, b *domain.TimeSession) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sessions, err
}

// SaveSession creates or updates a session.
func (s *Store) SaveSession(_ context.Context, session *domain.TimeSession) error {
	if session.ID == "" {
		return domain.ErrMissingID
	}
	return s.withLockWrite(func(data *storeData) error {
		data.Sessions[session.ID] = session.Clone()
		return nil
	})
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Sessions, id)
		return nil
	})
}

// DeleteSessionsByTask removes every session of a task.
func (s *Store) DeleteSessionsByTask(_ context.Context, taskID string) error {
	return s.withLockWrite(func(data *storeData) error {
		for id, ts := range data.Sessions {
			if ts.TaskID == taskID {
				delete(data.Sessions, id)
			}
		}
		return nil
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
// Returns true if the file was created.
func (s *Store) Initialize() (bool, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return false, err
	}
	defer s.releaseLock(lock)

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	}

	data := &storeData{Meta: meta{Version: schemaVersion}}
	data.ensureMaps()
	if err := s.write(data); err != nil {
		return false, err
	}
	return true, nil
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
// Nothing is written if fn fails.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	if data.Meta.Version > schemaVersion {
		return nil, fmt.Errorf("store file version %d is newer than supported version %d", data.Meta.Version, schemaVersion)
	}

	data.ensureMaps()
	return &data, nil
}

func (d *storeData) ensureMaps() {
	if d.Tasks == nil {
		d.Tasks = make(map[string]*domain.Task)
	}
	if d.Subtasks == nil {
		d.Subtasks = make(map[string]*domain.Subtask)
	}
	if d.Categories == nil {
		d.Categories = make(map[string]*domain.Category)
	}
	if d.Sessions == nil {
		d.Sessions = make(map[string]*domain.TimeSession)
	}
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.Repository       = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

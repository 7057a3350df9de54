// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/tempo/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockRepository is an in-memory test double for domain.Repository.
// Each *Err field makes the corresponding method fail.
// Stored values are copies, as a real store would keep them.
// Fields are ordered to minimize memory padding.
type MockRepository struct {
	Tasks      map[string]*domain.Task
	Subtasks   map[string]*domain.Subtask
	Categories map[string]*domain.Category
	Sessions   map[string]*domain.TimeSession

	GetTaskErr        error
	ListTasksErr      error
	SaveTaskErr       error
	DeleteTaskErr     error
	SaveTaskOrderErr  error
	GetSubtaskErr     error
	ListSubtasksErr   error
	SaveSubtaskErr    error
	DeleteSubtaskErr  error
	ListCategoriesErr error
	SaveCategoryErr   error
	DeleteCategoryErr error
	ListSessionsErr   error
	SaveSessionErr    error
	DeleteSessionErr  error

	// SaveSessionErrOnCall fails only the n-th SaveSession call (1-based).
	SaveSessionErrOnCall int

	SaveTaskCalls      int
	SaveSessionCalls   int
	SaveTaskOrderCalls int
	DeleteSessionCalls int

	mu sync.Mutex
}

// NewMockRepository creates a new MockRepository with initialized maps.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		Tasks:      make(map[string]*domain.Task),
		Subtasks:   make(map[string]*domain.Subtask),
		Categories: make(map[string]*domain.Category),
		Sessions:   make(map[string]*domain.TimeSession),
	}
}

// GetTask retrieves a task by ID.
func (m *MockRepository) GetTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTaskErr != nil {
		return nil, m.GetTaskErr
	}
	return m.Tasks[id].Clone(), nil
}

// ListTasks returns tasks matching the filter, ordered by order index.
func (m *MockRepository) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTasksErr != nil {
		return nil, m.ListTasksErr
	}
	out := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.Task) int {
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex - b.OrderIndex
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return out, nil
}

// SaveTask stores a copy of the task.
func (m *MockRepository) SaveTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTaskCalls++
	if m.SaveTaskErr != nil {
		return m.SaveTaskErr
	}
	c := task.Clone()
	c.Subtasks = nil
	m.Tasks[c.ID] = c
	return nil
}

// DeleteTask removes a task and its subtasks.
func (m *MockRepository) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteTaskErr != nil {
		return m.DeleteTaskErr
	}
	delete(m.Tasks, id)
	for sid, st := range m.Subtasks {
		if st.TaskID == id {
			delete(m.Subtasks, sid)
		}
	}
	return nil
}

// SaveTaskOrder rewrites order indexes. Unknown ids fail the whole batch.
func (m *MockRepository) SaveTaskOrder(_ context.Context, orders []domain.TaskOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTaskOrderCalls++
	if m.SaveTaskOrderErr != nil {
		return m.SaveTaskOrderErr
	}
	for _, o := range orders {
		if _, ok := m.Tasks[o.TaskID]; !ok {
			return fmt.Errorf("task %s: %w", o.TaskID, domain.ErrTaskNotFound)
		}
	}
	for _, o := range orders {
		m.Tasks[o.TaskID].OrderIndex = o.OrderIndex
	}
	return nil
}

// GetSubtask retrieves a subtask by ID.
func (m *MockRepository) GetSubtask(_ context.Context, id string) (*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSubtaskErr != nil {
		return nil, m.GetSubtaskErr
	}
	return m.Subtasks[id].Clone(), nil
}

// ListSubtasks returns the subtasks of the given tasks (all when none given).
func (m *MockRepository) ListSubtasks(_ context.Context, taskIDs ...string) ([]*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSubtasksErr != nil {
		return nil, m.ListSubtasksErr
	}
	var out []*domain.Subtask
	for _, st := range m.Subtasks {
		if len(taskIDs) > 0 && !slices.Contains(taskIDs, st.TaskID) {
			continue
		}
		out = append(out, st.Clone())
	}
	domain.SortSubtasks(out)
	return out, nil
}

// SaveSubtask stores a copy of the subtask.
func (m *MockRepository) SaveSubtask(_ context.Context, subtask *domain.Subtask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveSubtaskErr != nil {
		return m.SaveSubtaskErr
	}
	m.Subtasks[subtask.ID] = subtask.Clone()
	return nil
}

// DeleteSubtask removes a subtask.
func (m *MockRepository) DeleteSubtask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteSubtaskErr != nil {
		return m.DeleteSubtaskErr
	}
	delete(m.Subtasks, id)
	return nil
}

// ListCategories returns the categories of a user.
func (m *MockRepository) ListCategories(_ context.Context, userID string) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListCategoriesErr != nil {
		return nil, m.ListCategoriesErr
	}
	var out []*domain.Category
	for _, c := range m.Categories {
		if userID != "" && c.UserID != userID {
			continue
		}
		cc := *c
		out = append(out, &cc)
	}
	slices.SortFunc(out, func(a, b *domain.Category) int { return a.Created.Compare(b.Created) })
	return out, nil
}

// SaveCategory stores a copy of the category.
func (m *MockRepository) SaveCategory(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveCategoryErr != nil {
		return m.SaveCategoryErr
	}
	c := *category
	m.Categories[c.ID] = &c
	return nil
}

// DeleteCategory removes a category.
func (m *MockRepository) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteCategoryErr != nil {
		return m.DeleteCategoryErr
	}
	delete(m.Categories, id)
	return nil
}

// ListSessions returns sessions matching the filter.
func (m *MockRepository) ListSessions(_ context.Context, filter domain.SessionFilter) ([]*domain.TimeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSessionsErr != nil {
		return nil, m.ListSessionsErr
	}
	var out []*domain.TimeSession
	for _, s := range m.Sessions {
		if len(filter.TaskIDs) > 0 && !slices.Contains(filter.TaskIDs, s.TaskID) {
			continue
		}
		if filter.OpenOnly && !s.IsOpen() {
			continue
		}
		out = append(out, s.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.TimeSession) int { return a.StartTime.Compare(b.StartTime) })
	return out, nil
}

// SaveSession stores a copy of the session.
func (m *MockRepository) SaveSession(_ context.Context, session *domain.TimeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveSessionCalls++
	if m.SaveSessionErr != nil {
		return m.SaveSessionErr
	}
	if m.SaveSessionErrOnCall > 0 && m.SaveSessionCalls == m.SaveSessionErrOnCall {
		return fmt.Errorf("injected failure on call %d", m.SaveSessionCalls)
	}
	m.Sessions[session.ID] = session.Clone()
	return nil
}

// DeleteSession removes a session.
func (m *MockRepository) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteSessionCalls++
	if m.DeleteSessionErr != nil {
		return m.DeleteSessionErr
	}
	delete(m.Sessions, id)
	return nil
}

// DeleteSessionsByTask removes every session of a task.
func (m *MockRepository) DeleteSessionsByTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteSessionErr != nil {
		return m.DeleteSessionErr
	}
	for id, s := range m.Sessions {
		if s.TaskID == taskID {
			delete(m.Sessions, id)
		}
	}
	return nil
}

// OpenSessions returns the stored open sessions of a task.
func (m *MockRepository) OpenSessions(taskID string) []*domain.TimeSession {
	out, _ := m.ListSessions(context.Background(), domain.SessionFilter{TaskIDs: []string{taskID}, OpenOnly: true})
	return out
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr    error
	Created    bool
	InitCalled bool
}

// Initialize records the call and returns the configured result.
func (m *MockStoreInitializer) Initialize() (bool, error) {
	m.InitCalled = true
	if m.InitErr != nil {
		return false, m.InitErr
	}
	return m.Created, nil
}

// LogEntry is one message recorded by MockLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger records log entries.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("INFO", taskID, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("ERROR", taskID, category, msg) }

// ByLevel returns the entries logged at level.
func (m *MockLogger) ByLevel(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config  *domain.Config
	LoadErr error
}

// Load returns the configured config, or defaults.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// LoadGlobal returns the same config as Load.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	return m.Load()
}

// MockConfigManager is a test double for domain.ConfigManager.
// Init writes render the template into the matching ConfigInfo.
type MockConfigManager struct {
	InitErr     error
	Local       domain.ConfigInfo
	Global      domain.ConfigInfo
	InitConfigs []*domain.Config
}

// GetLocalConfigInfo returns the local config info.
func (m *MockConfigManager) GetLocalConfigInfo() domain.ConfigInfo { return m.Local }

// GetGlobalConfigInfo returns the global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo { return m.Global }

// InitLocalConfig records the call and fills the local config info.
func (m *MockConfigManager) InitLocalConfig(cfg *domain.Config) error {
	return m.init(&m.Local, cfg)
}

// InitGlobalConfig records the call and fills the global config info.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	return m.init(&m.Global, cfg)
}

func (m *MockConfigManager) init(info *domain.ConfigInfo, cfg *domain.Config) error {
	m.InitConfigs = append(m.InitConfigs, cfg)
	if m.InitErr != nil {
		return m.InitErr
	}
	if info.Exists {
		return domain.ErrConfigExists
	}
	content, err := domain.RenderConfigTemplate(cfg, "")
	if err != nil {
		return err
	}
	info.Content = content
	info.Exists = true
	return nil
}

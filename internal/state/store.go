// Package state holds the in-memory entity store of the current user.
//
// The store is the single source of truth the view layer reads from. Use
// cases mutate it only after the persistent store has accepted a change, so
// the in-memory state never runs ahead of what is stored.
package state

import (
	"cmp"
	"slices"
	"sync"

	"github.com/runoshun/tempo/internal/domain"
)

// EventKind describes what happened to an entity.
type EventKind string

const (
	EventPut     EventKind = "put"
	EventRemove  EventKind = "remove"
	EventReorder EventKind = "reorder"
	EventReset   EventKind = "reset"
)

// Entity names the collection an event refers to.
type Entity string

const (
	EntityTask     Entity = "task"
	EntitySubtask  Entity = "subtask"
	EntityCategory Entity = "category"
	EntitySession  Entity = "session"
	EntityAll      Entity = "all"
)

// Event is delivered to subscribers after every mutation.
// ID is empty for batch events (reorder, reset).
type Event struct {
	Kind   EventKind
	Entity Entity
	ID     string
}

// Snapshot is the full state of one user.
// Fields are ordered to minimize memory padding.
type Snapshot struct {
	UserID     string
	Tasks      []*domain.Task
	Subtasks   []*domain.Subtask
	Categories []*domain.Category
	Sessions   []*domain.TimeSession
}

// Store holds tasks, subtasks, categories and time sessions keyed by id.
// It is safe for concurrent use. All getters return copies.
type Store struct {
	tasks      map[string]*domain.Task
	subtasks   map[string]*domain.Subtask
	categories map[string]*domain.Category
	sessions   map[string]*domain.TimeSession
	subs       map[int]func(Event)
	userID     string
	nextSub    int
	mu         sync.RWMutex
	subMu      sync.Mutex
}

// New creates an empty store.
func New() *Store {
	s := &Store{subs: make(map[int]func(Event))}
	s.clear()
	return s
}

func (s *Store) clear() {
	s.tasks = make(map[string]*domain.Task)
	s.subtasks = make(map[string]*domain.Subtask)
	s.categories = make(map[string]*domain.Category)
	s.sessions = make(map[string]*domain.TimeSession)
	s.userID = ""
}

// Subscribe registers fn to be called after every mutation.
// Callbacks run on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// UserID returns the user whose data is loaded, or "" when empty.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// PutTask inserts or replaces a task. Attached subtasks are ignored;
// subtasks are stored with PutSubtask.
func (s *Store) PutTask(task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrMissingID
	}
	c := task.Clone()
	c.Subtasks = nil

	s.mu.Lock()
	s.tasks[c.ID] = c
	s.mu.Unlock()

	s.notify(Event{Kind: EventPut, Entity: EntityTask, ID: c.ID})
	return nil
}

// PutSubtask inserts or replaces a subtask.
func (s *Store) PutSubtask(subtask *domain.Subtask) error {
	if subtask == nil || subtask.ID == "" {
		return domain.ErrMissingID
	}
	c := subtask.Clone()

	s.mu.Lock()
	s.subtasks[c.ID] = c
	s.mu.Unlock()

	s.notify(Event{Kind: EventPut, Entity: EntitySubtask, ID: c.ID})
	return nil
}

// PutCategory inserts or replaces a category.
func (s *Store) PutCategory(category *domain.Category) error {
	if category == nil || category.ID == "" {
		return domain.ErrMissingID
	}
	c := *category

	s.mu.Lock()
	s.categories[c.ID] = &c
	s.mu.Unlock()

	s.notify(Event{Kind: EventPut, Entity: EntityCategory, ID: c.ID})
	return nil
}

// PutSession inserts or replaces a time session.
func (s *Store) PutSession(session *domain.TimeSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrMissingID
	}
	c := session.Clone()

	s.mu.Lock()
	s.sessions[c.ID] = c
	s.mu.Unlock()

	s.notify(Event{Kind: EventPut, Entity: EntitySession, ID: c.ID})
	return nil
}

// RemoveTask removes a task and its subtasks. Sessions are left alone.
func (s *Store) RemoveTask(id string) {
	s.mu.Lock()
	delete(s.tasks, id)
	for sid, st := range s.subtasks {
		if st.TaskID == id {
			delete(s.subtasks, sid)
		}
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemove, Entity: EntityTask, ID: id})
}

// RemoveSubtask removes a subtask.
func (s *Store) RemoveSubtask(id string) {
	s.mu.Lock()
	delete(s.subtasks, id)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemove, Entity: EntitySubtask, ID: id})
}

// RemoveCategory removes a category. Tasks keep their reference.
func (s *Store) RemoveCategory(id string) {
	s.mu.Lock()
	delete(s.categories, id)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemove, Entity: EntityCategory, ID: id})
}

// RemoveSession removes a time session.
func (s *Store) RemoveSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemove, Entity: EntitySession, ID: id})
}

// ApplyOrder rewrites the order index of several tasks as one change.
// Unknown ids are ignored. Subscribers see a single reorder event.
func (s *Store) ApplyOrder(orders map[string]int) {
	s.mu.Lock()
	for id, idx := range orders {
		if t, ok := s.tasks[id]; ok {
			t.OrderIndex = idx
		}
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventReorder, Entity: EntityTask})
}

// Replace swaps in the full state of a user.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	s.clear()
	s.userID = snap.UserID
	for _, t := range snap.Tasks {
		if t == nil || t.ID == "" {
			continue
		}
		c := t.Clone()
		c.Subtasks = nil
		s.tasks[c.ID] = c
		// Subtasks may come attached or separately
		for _, st := range t.Subtasks {
			if st != nil && st.ID != "" {
				s.subtasks[st.ID] = st.Clone()
			}
		}
	}
	for _, st := range snap.Subtasks {
		if st != nil && st.ID != "" {
			s.subtasks[st.ID] = st.Clone()
		}
	}
	for _, c := range snap.Categories {
		if c != nil && c.ID != "" {
			cc := *c
			s.categories[cc.ID] = &cc
		}
	}
	for _, ts := range snap.Sessions {
		if ts != nil && ts.ID != "" {
			s.sessions[ts.ID] = ts.Clone()
		}
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventReset, Entity: EntityAll})
}

// Reset discards all state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.clear()
	s.mu.Unlock()

	s.notify(Event{Kind: EventReset, Entity: EntityAll})
}

// Task returns a copy of the task with its subtasks attached, or nil.
func (s *Store) Task(id string) *domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	return s.withSubtasks(t)
}

// Tasks returns copies of all tasks ordered by order index, then id.
func (s *Store) Tasks() []*domain.Task {
	return s.selectTasks(func(*domain.Task) bool { return true })
}

// TasksByType returns copies of the tasks of one partition.
func (s *Store) TasksByType(typ domain.TaskType) []*domain.Task {
	return s.selectTasks(func(t *domain.Task) bool { return t.Type == typ })
}

// TasksByCategory returns copies of the tasks referencing a category.
func (s *Store) TasksByCategory(categoryID string) []*domain.Task {
	return s.selectTasks(func(t *domain.Task) bool { return t.CategoryID == categoryID })
}

func (s *Store) selectTasks(keep func(*domain.Task) bool) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, s.withSubtasks(t))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Task) int {
		if a.OrderIndex != b.OrderIndex {
			return cmp.Compare(a.OrderIndex, b.OrderIndex)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// withSubtasks must be called with the read lock held.
func (s *Store) withSubtasks(t *domain.Task) *domain.Task {
	c := t.Clone()
	c.Subtasks = s.subtasksOf(t.ID)
	return c
}

func (s *Store) subtasksOf(taskID string) []*domain.Subtask {
	var out []*domain.Subtask
	for _, st := range s.subtasks {
		if st.TaskID == taskID {
			out = append(out, st.Clone())
		}
	}
	domain.SortSubtasks(out)
	return out
}

// Subtask returns a copy of the subtask, or nil.
func (s *Store) Subtask(id string) *domain.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtasks[id].Clone()
}

// Subtasks returns copies of a task's subtasks in display order.
func (s *Store) Subtasks(taskID string) []*domain.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtasksOf(taskID)
}

// Category returns a copy of the category, or nil.
func (s *Store) Category(id string) *domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil
	}
	cc := *c
	return &cc
}

// Categories returns copies of all categories ordered by creation, then name.
func (s *Store) Categories() []*domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cc := *c
		out = append(out, &cc)
	}
	slices.SortFunc(out, func(a, b *domain.Category) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Sessions returns copies of a task's sessions ordered by start time.
// An empty taskID returns every session.
func (s *Store) Sessions(taskID string) []*domain.TimeSession {
	return s.selectSessions(taskID, false)
}

// OpenSessions returns copies of a task's sessions without an end time.
func (s *Store) OpenSessions(taskID string) []*domain.TimeSession {
	return s.selectSessions(taskID, true)
}

// OpenSession returns the open session of a task, or nil.
// If several are open (corrupt data) the most recent one is returned.
func (s *Store) OpenSession(taskID string) *domain.TimeSession {
	open := s.OpenSessions(taskID)
	if len(open) == 0 {
		return nil
	}
	return open[len(open)-1]
}

func (s *Store) selectSessions(taskID string, openOnly bool) []*domain.TimeSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TimeSession
	for _, ts := range s.sessions {
		if taskID != "" && ts.TaskID != taskID {
			continue
		}
		if openOnly && !ts.IsOpen() {
			continue
		}
		out = append(out, ts.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.TimeSession) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

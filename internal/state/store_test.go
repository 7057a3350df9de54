package state

import (
	"sync"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStore_PutTask_RequiresID(t *testing.T) {
	s := New()

	err := s.PutTask(&domain.Task{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrMissingID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, s.PutSubtask(&domain.Subtask{}), domain.ErrMissingID)
	assert.ErrorIs(t, s.PutCategory(&domain.Category{}), domain.ErrMissingID)
	assert.ErrorIs(t, s.PutSession(&domain.TimeSession{}), domain.ErrMissingID)
	assert.Empty(t, s.Tasks())
}

func TestStore_PutTask_Idempotent(t *testing.T) {
	s := New()
	task := &domain.Task{ID: "t1", Title: "Write report"}

	require.NoError(t, s.PutTask(task))
	require.NoError(t, s.PutTask(task))

	assert.Len(t, s.Tasks(), 1)

	task.Title = "Renamed"
	require.NoError(t, s.PutTask(task))
	assert.Equal(t, "Renamed", s.Task("t1").Title)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "t1", Title: "Original"}))
	require.NoError(t, s.PutSubtask(&domain.Subtask{ID: "s1", TaskID: "t1", Title: "Step"}))

	got := s.Task("t1")
	got.Title = "Mutated"
	got.Subtasks[0].Title = "Mutated"

	assert.Equal(t, "Original", s.Task("t1").Title)
	assert.Equal(t, "Step", s.Subtask("s1").Title)
}

func TestStore_TaskAttachesOrderedSubtasks(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "t1"}))
	require.NoError(t, s.PutSubtask(&domain.Subtask{ID: "b", TaskID: "t1", OrderIndex: 1}))
	require.NoError(t, s.PutSubtask(&domain.Subtask{ID: "a", TaskID: "t1", OrderIndex: 0}))
	require.NoError(t, s.PutSubtask(&domain.Subtask{ID: "x", TaskID: "other"}))

	task := s.Task("t1")
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "a", task.Subtasks[0].ID)
	assert.Equal(t, "b", task.Subtasks[1].ID)
}

func TestStore_RemoveTask_DropsSubtasksKeepsSessions(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "t1"}))
	require.NoError(t, s.PutSubtask(&domain.Subtask{ID: "s1", TaskID: "t1"}))
	require.NoError(t, s.PutSession(&domain.TimeSession{ID: "ts1", TaskID: "t1", StartTime: testNow}))

	s.RemoveTask("t1")

	assert.Nil(t, s.Task("t1"))
	assert.Nil(t, s.Subtask("s1"))
	assert.Len(t, s.Sessions("t1"), 1)
}

func TestStore_TasksByType(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "r1", Type: domain.TaskTypeRegular, OrderIndex: 1}))
	require.NoError(t, s.PutTask(&domain.Task{ID: "r0", Type: domain.TaskTypeRegular, OrderIndex: 0}))
	require.NoError(t, s.PutTask(&domain.Task{ID: "c0", Type: domain.TaskTypeContinuous}))

	regular := s.TasksByType(domain.TaskTypeRegular)
	require.Len(t, regular, 2)
	assert.Equal(t, "r0", regular[0].ID)
	assert.Equal(t, "r1", regular[1].ID)
	assert.Len(t, s.TasksByType(domain.TaskTypeContinuous), 1)
}

func TestStore_TasksByCategory(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "t1", CategoryID: "work"}))
	require.NoError(t, s.PutTask(&domain.Task{ID: "t2", CategoryID: "home"}))

	got := s.TasksByCategory("work")
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestStore_OpenSession(t *testing.T) {
	s := New()
	end := testNow.Add(time.Minute)
	require.NoError(t, s.PutSession(&domain.TimeSession{ID: "closed", TaskID: "t1", StartTime: testNow, EndTime: &end}))
	assert.Nil(t, s.OpenSession("t1"))

	require.NoError(t, s.PutSession(&domain.TimeSession{ID: "open", TaskID: "t1", StartTime: testNow.Add(time.Hour)}))

	open := s.OpenSession("t1")
	require.NotNil(t, open)
	assert.Equal(t, "open", open.ID)
	assert.Len(t, s.OpenSessions("t1"), 1)
	assert.Len(t, s.Sessions("t1"), 2)
	assert.Len(t, s.Sessions(""), 2)
}

func TestStore_ApplyOrder_SingleEvent(t *testing.T) {
	s := New()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.PutTask(&domain.Task{ID: id, OrderIndex: i}))
	}

	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })
	defer unsubscribe()

	s.ApplyOrder(map[string]int{"a": 1, "b": 0, "c": 2, "missing": 7})

	require.Len(t, events, 1)
	assert.Equal(t, EventReorder, events[0].Kind)
	assert.Equal(t, 1, s.Task("a").OrderIndex)
	assert.Equal(t, 0, s.Task("b").OrderIndex)
	assert.Equal(t, 2, s.Task("c").OrderIndex)
	assert.Nil(t, s.Task("missing"))
}

func TestStore_Subscribe(t *testing.T) {
	s := New()
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, s.PutTask(&domain.Task{ID: "t1"}))
	s.RemoveTask("t1")
	unsubscribe()
	require.NoError(t, s.PutTask(&domain.Task{ID: "t2"}))

	assert.Equal(t, []Event{
		{Kind: EventPut, Entity: EntityTask, ID: "t1"},
		{Kind: EventRemove, Entity: EntityTask, ID: "t1"},
	}, events)
}

func TestStore_SubscriberCanReadStore(t *testing.T) {
	s := New()
	var seen *domain.Task
	s.Subscribe(func(ev Event) {
		// The lock is released before subscribers run
		seen = s.Task(ev.ID)
	})

	require.NoError(t, s.PutTask(&domain.Task{ID: "t1", Title: "Visible"}))

	require.NotNil(t, seen)
	assert.Equal(t, "Visible", seen.Title)
}

func TestStore_ReplaceAndReset(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTask(&domain.Task{ID: "stale"}))

	s.Replace(Snapshot{
		UserID: "alice",
		Tasks: []*domain.Task{
			{ID: "t1", Subtasks: []*domain.Subtask{{ID: "s1", TaskID: "t1"}}},
			{Title: "skipped without id"},
		},
		Subtasks:   []*domain.Subtask{{ID: "s2", TaskID: "t1", OrderIndex: 1}},
		Categories: []*domain.Category{{ID: "c1", Name: "Work"}},
		Sessions:   []*domain.TimeSession{{ID: "ts1", TaskID: "t1", StartTime: testNow}},
	})

	assert.Equal(t, "alice", s.UserID())
	assert.Nil(t, s.Task("stale"))
	require.Len(t, s.Tasks(), 1)
	assert.Len(t, s.Task("t1").Subtasks, 2)
	assert.Len(t, s.Categories(), 1)
	assert.NotNil(t, s.OpenSession("t1"))

	s.Reset()

	assert.Empty(t, s.UserID())
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Categories())
	assert.Empty(t, s.Sessions(""))
}

func TestStore_Categories_Ordered(t *testing.T) {
	s := New()
	require.NoError(t, s.PutCategory(&domain.Category{ID: "2", Name: "Personal", Created: testNow.Add(time.Second)}))
	require.NoError(t, s.PutCategory(&domain.Category{ID: "1", Name: "Work", Created: testNow}))

	cats := s.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "Work", cats[0].Name)
	assert.Equal(t, "Work", s.Category("1").Name)
	assert.Nil(t, s.Category("missing"))

	s.RemoveCategory("1")
	assert.Len(t, s.Categories(), 1)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = s.PutTask(&domain.Task{ID: id, OrderIndex: i})
			_ = s.Tasks()
			s.ApplyOrder(map[string]int{id: i + 1})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Tasks(), 20)
}

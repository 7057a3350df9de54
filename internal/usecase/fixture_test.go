package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/testutil"
	"github.com/runoshun/tempo/internal/usecase/shared"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type staticIdentity string

func (s staticIdentity) CurrentUser() string { return string(s) }
func (s staticIdentity) Subscribe(func(userID string)) func() { return func() {} }

// fixture wires a mock repository and a loaded entity store.
type fixture struct {
	repo   *testutil.MockRepository
	store  *state.Store
	clock  *testutil.MockClock
	logger *testutil.MockLogger
	config *testutil.MockConfigLoader
	guard  *shared.InFlight
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   testutil.NewMockRepository(),
		store:  state.New(),
		clock:  &testutil.MockClock{NowTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		logger: &testutil.MockLogger{},
		config: &testutil.MockConfigLoader{},
		guard:  &shared.InFlight{},
	}
	f.store.Replace(state.Snapshot{UserID: testUser})
	return f
}

// seedTask writes task to both the repository and the entity store.
func (f *fixture) seedTask(t *testing.T, task *domain.Task) *domain.Task {
	t.Helper()
	if task.UserID == "" {
		task.UserID = testUser
	}
	if task.Type == "" {
		task.Type = domain.TaskTypeRegular
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Created.IsZero() {
		task.Created = f.clock.NowTime
		task.Updated = f.clock.NowTime
	}
	require.NoError(t, f.repo.SaveTask(context.Background(), task))
	require.NoError(t, f.store.PutTask(task))
	return task
}

func (f *fixture) seedSession(t *testing.T, session *domain.TimeSession) {
	t.Helper()
	require.NoError(t, f.repo.SaveSession(context.Background(), session))
	require.NoError(t, f.store.PutSession(session))
}

func (f *fixture) seedSubtask(t *testing.T, subtask *domain.Subtask) {
	t.Helper()
	require.NoError(t, f.repo.SaveSubtask(context.Background(), subtask))
	require.NoError(t, f.store.PutSubtask(subtask))
}

func (f *fixture) seedCategory(t *testing.T, category *domain.Category) {
	t.Helper()
	if category.UserID == "" {
		category.UserID = testUser
	}
	require.NoError(t, f.repo.SaveCategory(context.Background(), category))
	require.NoError(t, f.store.PutCategory(category))
}

func (f *fixture) startTask() *StartTask {
	return NewStartTask(f.repo, f.store, f.guard, f.clock, f.logger)
}

func (f *fixture) stopTask() *StopTask {
	return NewStopTask(f.repo, f.store, f.guard, f.clock, f.logger)
}

func (f *fixture) editTask() *EditTask {
	return NewEditTask(f.repo, f.store, f.clock, f.logger)
}

func (f *fixture) newTask() *NewTask {
	return NewNewTask(f.repo, f.store, staticIdentity(testUser), f.config, f.clock, f.logger)
}

func (f *fixture) newCategory() *NewCategory {
	return NewNewCategory(f.repo, f.store, staticIdentity(testUser), f.clock, f.logger)
}

func continuousTask(id string) *domain.Task {
	return &domain.Task{
		ID:              id,
		Title:           "Deep work " + id,
		Type:            domain.TaskTypeContinuous,
		DurationMinutes: 60,
	}
}

func ptr[T any](v T) *T {
	return &v
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTask_Execute_Success(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))

	out, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})

	require.NoError(t, err)
	assert.True(t, out.Task.IsActive)
	require.NotNil(t, out.Task.StartTime)
	assert.Equal(t, f.clock.NowTime, *out.Task.StartTime)
	assert.True(t, out.Session.IsOpen())
	assert.Equal(t, "c1", out.Session.TaskID)
	assert.Equal(t, f.clock.NowTime, out.Session.StartTime)

	// Persisted and mirrored
	assert.True(t, f.repo.Tasks["c1"].IsActive)
	assert.Len(t, f.repo.OpenSessions("c1"), 1)
	assert.Equal(t, out.Session.ID, f.store.OpenSession("c1").ID)
	assert.Len(t, f.logger.ByLevel("INFO"), 1)
}

func TestStartTask_Execute_Errors(t *testing.T) {
	tests := []struct {
		setup func(t *testing.T, f *fixture)
		want  error
		kind  error
		name  string
		id    string
	}{
		{
			name: "missing task",
			id:   "missing",
			want: domain.ErrTimerTaskNotFound,
			kind: domain.ErrNotFound,
		},
		{
			name: "regular task",
			id:   "r1",
			setup: func(t *testing.T, f *fixture) {
				f.seedTask(t, &domain.Task{ID: "r1", Title: "Buy milk"})
			},
			want: domain.ErrNotContinuous,
			kind: domain.ErrInvalidState,
		},
		{
			name: "already active",
			id:   "c1",
			setup: func(t *testing.T, f *fixture) {
				task := continuousTask("c1")
				task.IsActive = true
				f.seedTask(t, task)
			},
			want: domain.ErrAlreadyActive,
			kind: domain.ErrInvalidState,
		},
		{
			name: "open session without active flag",
			id:   "c1",
			setup: func(t *testing.T, f *fixture) {
				f.seedTask(t, continuousTask("c1"))
				f.seedSession(t, &domain.TimeSession{ID: "s1", TaskID: "c1", StartTime: f.clock.NowTime})
			},
			want: domain.ErrSessionOpen,
			kind: domain.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			calls := f.repo.SaveSessionCalls

			_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: tt.id})

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, calls, f.repo.SaveSessionCalls, "no write on rejected start")
		})
	}
}

func TestStartTask_Execute_SessionWriteFails(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))
	f.repo.SaveSessionErr = errors.New("disk full")

	_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.False(t, f.store.Task("c1").IsActive)
	assert.False(t, f.repo.Tasks["c1"].IsActive)
	assert.Nil(t, f.store.OpenSession("c1"))
}

func TestStartTask_Execute_TaskWriteFailsRollsBackSession(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))
	f.repo.SaveTaskErr = errors.New("connection reset")

	_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Empty(t, f.repo.OpenSessions("c1"), "session deleted again")
	assert.Equal(t, 1, f.repo.DeleteSessionCalls)
	assert.False(t, f.store.Task("c1").IsActive)
	assert.Empty(t, f.store.Sessions("c1"))
}

func TestStartTask_Execute_RollbackFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))
	f.repo.SaveTaskErr = errors.New("connection reset")
	f.repo.DeleteSessionErr = errors.New("connection reset")

	_, err := f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Len(t, f.logger.ByLevel("ERROR"), 1)
	assert.False(t, f.store.Task("c1").IsActive)
}

func TestStartTask_Execute_InFlight(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))

	release, err := f.guard.Acquire("c1")
	require.NoError(t, err)

	_, err = f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})
	assert.ErrorIs(t, err, domain.ErrOperationInFlight)

	release()
	_, err = f.startTask().Execute(context.Background(), StartTaskInput{TaskID: "c1"})
	assert.NoError(t, err)
}

func TestStartTask_Execute_SecondStartRejected(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, continuousTask("c1"))
	uc := f.startTask()

	_, err := uc.Execute(context.Background(), StartTaskInput{TaskID: "c1"})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), StartTaskInput{TaskID: "c1"})

	assert.ErrorIs(t, err, domain.ErrAlreadyActive)
	assert.Len(t, f.store.OpenSessions("c1"), 1)
}

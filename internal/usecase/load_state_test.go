package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRepo(t *testing.T, repo *testutil.MockRepository, now time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "r1", UserID: "alice", Title: "Report", Type: domain.TaskTypeRegular}))
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "c1", UserID: "alice", Title: "Focus", Type: domain.TaskTypeContinuous, IsActive: true}))
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "b1", UserID: "bob", Title: "Bob's", Type: domain.TaskTypeRegular}))
	require.NoError(t, repo.SaveSubtask(ctx, &domain.Subtask{ID: "s1", TaskID: "r1", Title: "Gather"}))
	require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "ts1", TaskID: "c1", StartTime: now}))
	require.NoError(t, repo.SaveCategory(ctx, &domain.Category{ID: "k1", UserID: "alice", Name: "Work", Color: "#EF4444"}))
	require.NoError(t, repo.SaveCategory(ctx, &domain.Category{ID: "k2", UserID: "bob", Name: "Home", Color: "#10B981"}))
}

func TestLoadState_Execute(t *testing.T) {
	repo := testutil.NewMockRepository()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	seedRepo(t, repo, now)
	store := state.New()

	out, err := NewLoadState(repo, store, nil).Execute(context.Background(), LoadStateInput{UserID: "alice"})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Tasks)
	assert.Equal(t, 1, out.Sessions)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "alice", store.UserID())
	assert.Len(t, store.Tasks(), 2)
	assert.Nil(t, store.Task("b1"), "other users' data is not loaded")
	assert.Len(t, store.Task("r1").Subtasks, 1)
	require.Len(t, store.Categories(), 1)
	assert.Equal(t, "Work", store.Categories()[0].Name)
	assert.NotNil(t, store.OpenSession("c1"))
}

func TestLoadState_Execute_SwitchUser(t *testing.T) {
	repo := testutil.NewMockRepository()
	seedRepo(t, repo, time.Now())
	store := state.New()
	uc := NewLoadState(repo, store, nil)

	_, err := uc.Execute(context.Background(), LoadStateInput{UserID: "alice"})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), LoadStateInput{UserID: "bob"})
	require.NoError(t, err)

	assert.Equal(t, "bob", store.UserID())
	require.Len(t, store.Tasks(), 1)
	assert.Equal(t, "b1", store.Tasks()[0].ID)
	assert.Empty(t, store.Sessions(""))
}

func TestLoadState_Execute_Anonymous(t *testing.T) {
	repo := testutil.NewMockRepository()
	seedRepo(t, repo, time.Now())
	store := state.New()
	uc := NewLoadState(repo, store, nil)
	_, err := uc.Execute(context.Background(), LoadStateInput{UserID: "alice"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), LoadStateInput{})

	require.NoError(t, err)
	assert.Empty(t, store.Tasks())
	assert.Empty(t, store.Categories())
	assert.Empty(t, store.UserID())
}

func TestLoadState_Execute_StoreErrorLeavesEmpty(t *testing.T) {
	repo := testutil.NewMockRepository()
	seedRepo(t, repo, time.Now())
	store := state.New()
	uc := NewLoadState(repo, store, nil)
	_, err := uc.Execute(context.Background(), LoadStateInput{UserID: "alice"})
	require.NoError(t, err)

	repo.ListSessionsErr = errors.New("timeout")
	_, err = uc.Execute(context.Background(), LoadStateInput{UserID: "bob"})

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Empty(t, store.Tasks(), "no stale data from the previous user")
}

func TestLoadState_Execute_TimerWarnings(t *testing.T) {
	repo := testutil.NewMockRepository()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "0000-aaaa", UserID: "alice", Title: "A", Type: domain.TaskTypeContinuous, IsActive: true}))
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "0000-bbbb", UserID: "alice", Title: "B", Type: domain.TaskTypeContinuous}))
	require.NoError(t, repo.SaveTask(ctx, &domain.Task{ID: "0000-cccc", UserID: "alice", Title: "C", Type: domain.TaskTypeContinuous, IsActive: true}))
	require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "s1", TaskID: "0000-bbbb", StartTime: now}))
	require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "s2", TaskID: "0000-cccc", StartTime: now}))
	require.NoError(t, repo.SaveSession(ctx, &domain.TimeSession{ID: "s3", TaskID: "0000-cccc", StartTime: now.Add(time.Minute)}))
	logger := &testutil.MockLogger{}

	out, err := NewLoadState(repo, state.New(), logger).Execute(ctx, LoadStateInput{UserID: "alice"})

	require.NoError(t, err)
	require.Len(t, out.Warnings, 3)
	assert.Contains(t, out.Warnings[0], "active without an open session")
	assert.Contains(t, out.Warnings[1], "not active")
	assert.Contains(t, out.Warnings[2], "2 open sessions")
	assert.Len(t, logger.ByLevel("WARN"), 3)
	assert.True(t, repo.Tasks["0000-aaaa"].IsActive, "load never repairs data")
}

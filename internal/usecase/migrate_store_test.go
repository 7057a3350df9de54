package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStore_Execute(t *testing.T) {
	source := testutil.NewMockRepository()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	seedRepo(t, source, now)
	dest := testutil.NewMockRepository()
	initializer := &testutil.MockStoreInitializer{Created: true}

	out, err := NewMigrateStore(source, dest, initializer).Execute(context.Background(), MigrateStoreInput{})

	require.NoError(t, err)
	assert.True(t, initializer.InitCalled)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 3, out.Migrated)
	assert.Zero(t, out.Skipped)
	assert.Equal(t, 2, out.Categories)
	assert.Equal(t, 1, out.Subtasks)
	assert.Equal(t, 1, out.Sessions)
	assert.Len(t, dest.Tasks, 3)
	assert.Contains(t, dest.Subtasks, "s1")
	assert.Contains(t, dest.Sessions, "ts1")
}

func TestMigrateStore_Execute_OneUser(t *testing.T) {
	source := testutil.NewMockRepository()
	seedRepo(t, source, time.Now())
	dest := testutil.NewMockRepository()

	out, err := NewMigrateStore(source, dest, &testutil.MockStoreInitializer{}).Execute(context.Background(), MigrateStoreInput{UserID: "bob"})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Migrated)
	assert.Equal(t, 1, out.Categories)
	assert.Contains(t, dest.Tasks, "b1")
	assert.NotContains(t, dest.Tasks, "r1")
}

func TestMigrateStore_Execute_Idempotent(t *testing.T) {
	source := testutil.NewMockRepository()
	seedRepo(t, source, time.Now())
	dest := testutil.NewMockRepository()
	uc := NewMigrateStore(source, dest, &testutil.MockStoreInitializer{})

	_, err := uc.Execute(context.Background(), MigrateStoreInput{})
	require.NoError(t, err)
	out, err := uc.Execute(context.Background(), MigrateStoreInput{})

	require.NoError(t, err)
	assert.Zero(t, out.Migrated)
	assert.Equal(t, 3, out.Skipped)
}

func TestMigrateStore_Execute_Conflict(t *testing.T) {
	source := testutil.NewMockRepository()
	seedRepo(t, source, time.Now())
	dest := testutil.NewMockRepository()
	require.NoError(t, dest.SaveTask(context.Background(), &domain.Task{ID: "r1", UserID: "alice", Title: "Changed", Type: domain.TaskTypeRegular}))

	_, err := NewMigrateStore(source, dest, &testutil.MockStoreInitializer{}).Execute(context.Background(), MigrateStoreInput{})

	assert.ErrorIs(t, err, domain.ErrMigrationConflict)
}

func TestMigrateStore_Execute_InitError(t *testing.T) {
	initializer := &testutil.MockStoreInitializer{InitErr: errors.New("permission denied")}

	_, err := NewMigrateStore(testutil.NewMockRepository(), testutil.NewMockRepository(), initializer).Execute(context.Background(), MigrateStoreInput{})

	assert.ErrorContains(t, err, "initialize destination store")
}

func TestMigrateStore_Execute_NilStores(t *testing.T) {
	_, err := NewMigrateStore(nil, nil, &testutil.MockStoreInitializer{}).Execute(context.Background(), MigrateStoreInput{})
	assert.Error(t, err)

	_, err = NewMigrateStore(testutil.NewMockRepository(), testutil.NewMockRepository(), nil).Execute(context.Background(), MigrateStoreInput{})
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/app"
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/infra/jsonstore"
	"github.com/runoshun/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_NoArgs_LaunchesTUI(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	d, _ := newTestDeps(t)
	var got *app.Container
	launchTUIFunc = func(_ context.Context, c *app.Container) error {
		got = c
		return nil
	}

	root := newRootCommand(d, "test-version")
	root.SetArgs([]string{})
	err := root.Execute()

	assert.NoError(t, err)
	assert.Same(t, d.c, got, "launchTUIFunc should receive the container")
}

func TestRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(context.Context, *app.Container) error {
		called = true
		return nil
	}

	root := newRootCommand(&deps{}, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	err := root.Execute()

	assert.NoError(t, err)
	assert.False(t, called, "launchTUIFunc should NOT be called when --help is provided")
	assert.Contains(t, out.String(), "Time Tracking:")
	assert.Contains(t, out.String(), "Task Management:")
}

func TestRootCommand_OpensContainerWithFlags(t *testing.T) {
	d, _ := newTestDeps(t)
	prebuilt := d.c

	var gotOpts app.Options
	d = &deps{open: func(opts app.Options) (*app.Container, error) {
		gotOpts = opts
		return prebuilt, nil
	}}

	root := newRootCommand(d, "test-version")
	_, err := run(t, root, "--data-dir", "/tmp/somewhere", "--user", "bob", "list")
	require.NoError(t, err)

	assert.Equal(t, app.Options{DataDir: "/tmp/somewhere", User: "bob"}, gotOpts)
	assert.Same(t, prebuilt, d.c)
}

func newUninitializedDeps(t *testing.T) *deps {
	t.Helper()
	dataDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := app.NewWithDeps(app.Config{DataDir: dataDir}, jsonstore.New(domain.JSONStorePath(dataDir)), "alice",
		&testutil.MockClock{NowTime: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}, logger)
	return &deps{c: c}
}

func TestRootCommand_NotInitialized(t *testing.T) {
	d := newUninitializedDeps(t)

	_, err := run(t, newRootCommand(d, "test-version"), "list")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestRootCommand_InitThenList(t *testing.T) {
	d := newUninitializedDeps(t)

	out, err := run(t, newRootCommand(d, "test-version"), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized json store")
	assert.Contains(t, out, "Created category Work")
	assert.Len(t, d.c.State.Categories(), 3)

	out, err = run(t, newRootCommand(d, "test-version"), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Store already initialized")
	assert.NotContains(t, out, "Created category")

	_, err = run(t, newRootCommand(d, "test-version"), "new", "--title", "First")
	require.NoError(t, err)
	out, err = run(t, newRootCommand(d, "test-version"), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "First")
}

func TestRootCommand_PrintsConfigWarnings(t *testing.T) {
	d, _ := newTestDeps(t)
	d.c.AppConfig.Warnings = []string{"unknown section: workers"}

	root := newRootCommand(d, "test-version")
	var stderr bytes.Buffer
	root.SetOut(io.Discard)
	root.SetErr(&stderr)
	root.SetArgs([]string{"list"})
	require.NoError(t, root.Execute())

	assert.Contains(t, stderr.String(), "Warning: unknown section: workers")
}

func TestRootCommand_Version(t *testing.T) {
	out, err := run(t, newRootCommand(&deps{}, "1.2.3"), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestSkipsStateLoad(t *testing.T) {
	root := newRootCommand(&deps{}, "test-version")

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"init"}, want: true},
		{args: []string{"config", "show"}, want: true},
		{args: []string{"migrate"}, want: true},
		{args: []string{"list"}, want: false},
		{args: []string{"subtask", "add"}, want: false},
	}
	for _, tt := range tests {
		cmd, _, err := root.Find(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, skipsStateLoad(cmd), tt.args)
	}
}

func TestExecute_EndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(app.EnvDataDir, "")
	t.Setenv("TEMPO_USER", "")
	dataDir := t.TempDir()
	ctx := context.Background()

	// Silence command output written to the process stdout
	stdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	os.Stdout = devNull
	defer func() {
		os.Stdout = stdout
		_ = devNull.Close()
	}()

	require.NoError(t, Execute(ctx, "test", []string{"--data-dir", dataDir, "--user", "alice", "init"}))
	require.NoError(t, Execute(ctx, "test", []string{"--data-dir", dataDir, "--user", "alice", "new", "--title", "Persisted"}))

	store := jsonstore.New(domain.JSONStorePath(dataDir))
	tasks, err := store.ListTasks(ctx, domain.TaskFilter{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persisted", tasks[0].Title)

	_, err = os.Stat(domain.GlobalLogPath(dataDir))
	assert.NoError(t, err, "activity log should be written")
}

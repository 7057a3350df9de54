package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newTestLogger(t *testing.T, level slog.Level) (*Logger, string) {
	t.Helper()
	dataDir := t.TempDir()
	logger := New(dataDir, level, &testutil.MockClock{NowTime: logNow})
	t.Cleanup(func() { _ = logger.Close() })
	return logger, dataDir
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestEntry_String(t *testing.T) {
	e := entry{
		at:       logNow,
		level:    slog.LevelInfo,
		taskID:   "0193a1b2-7c4d-7e5f-8a9b-0c1d2e3f4a5b",
		category: domain.LogTask,
		msg:      `created regular task: "Write report"`,
	}
	assert.Equal(t, "[2026-10-16 09:30:00] [INFO] [task-2e3f4a5b] [task] created regular task: \"Write report\"\n", e.String())

	e.taskID = ""
	e.level = slog.LevelWarn
	assert.Contains(t, e.String(), "[WARN] [global] [task]")
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "DEBUG", levelName(slog.LevelDebug))
	assert.Equal(t, "INFO", levelName(slog.LevelInfo))
	assert.Equal(t, "INFO", levelName(slog.LevelInfo+2))
	assert.Equal(t, "WARN", levelName(slog.LevelWarn))
	assert.Equal(t, "ERROR", levelName(slog.LevelError+4))
}

func TestLogger_TaskEntriesGoToBothFiles(t *testing.T) {
	logger, dataDir := newTestLogger(t, slog.LevelInfo)

	logger.Info("t1", domain.LogTask, "message for task 1")
	logger.Info("t2", domain.LogTask, "message for task 2")
	logger.Info("", domain.LogCategory, "global message")

	global := readLog(t, domain.GlobalLogPath(dataDir))
	assert.Contains(t, global, "message for task 1")
	assert.Contains(t, global, "message for task 2")
	assert.Contains(t, global, "[global] [category] global message")

	task1 := readLog(t, domain.TaskLogPath(dataDir, "t1"))
	assert.Contains(t, task1, "[task-t1] [task] message for task 1")
	assert.NotContains(t, task1, "task 2")
	assert.NotContains(t, task1, "global message")

	entries, err := os.ReadDir(filepath.Join(dataDir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, dataDir := newTestLogger(t, slog.LevelWarn)

	logger.Debug("t1", domain.LogTask, "debug message")
	logger.Info("t1", domain.LogTask, "info message")
	logger.Warn("t1", domain.LogTask, "warn message")
	logger.Error("t1", domain.LogTask, "error message")

	global := readLog(t, domain.GlobalLogPath(dataDir))
	assert.NotContains(t, global, "debug message")
	assert.NotContains(t, global, "info message")
	assert.Contains(t, global, "[WARN]")
	assert.Contains(t, global, "[ERROR]")
}

func TestLogger_TimerSession(t *testing.T) {
	logger, dataDir := newTestLogger(t, slog.LevelInfo)
	taskID := "0193a1b2-7c4d-7e5f-8a9b-0c1d2e3f4a5b"
	session := &domain.TimeSession{ID: "0193a1b2-0000-7000-8000-00000000abcd", TaskID: taskID, StartTime: logNow}

	logger.Info(taskID, domain.LogTimer, domain.SessionStartedMessage(session))
	session.Close(logNow.Add(25 * time.Minute))
	logger.Info(taskID, domain.LogTimer, domain.SessionStoppedMessage(session, 40))

	lines := strings.Split(strings.TrimSpace(readLog(t, domain.TaskLogPath(dataDir, taskID))), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2026-10-16 09:30:00] [INFO] [task-2e3f4a5b] [timer] session 0000abcd started at 09:30:00", lines[0])
	assert.Equal(t, "[2026-10-16 09:30:00] [INFO] [task-2e3f4a5b] [timer] session 0000abcd stopped at 09:55:00 after 25 min (total 40 min)", lines[1])
}

func TestLogger_DisabledWhenEmptyDataDir(t *testing.T) {
	logger := New("", slog.LevelDebug, nil)

	logger.Info("t1", domain.LogTask, "ignored")
	logger.Error("", domain.LogState, "ignored")

	assert.Empty(t, logger.files)
	assert.NoError(t, logger.Close())
}

func TestLogger_CloseReopens(t *testing.T) {
	logger, dataDir := newTestLogger(t, slog.LevelInfo)

	logger.Info("t1", domain.LogTask, "before close")
	require.NoError(t, logger.Close())
	assert.Empty(t, logger.files)

	logger.Info("t1", domain.LogTask, "after close")

	task := readLog(t, domain.TaskLogPath(dataDir, "t1"))
	assert.Contains(t, task, "before close")
	assert.Contains(t, task, "after close")
}

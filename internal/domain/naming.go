package domain

import (
	"path/filepath"
)

// File and directory names inside the data directory.
const (
	ConfigFileName = "config.toml"
	AppDirName     = "tempo"
)

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// DefaultDataDir returns the data directory under dataHome.
func DefaultDataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(dataDir, taskID string) string {
	return filepath.Join(dataDir, "logs", "task-"+ShortID(taskID)+".log")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "tempo.log")
}

// JSONStorePath returns the path to the JSON store file.
func JSONStorePath(dataDir string) string {
	return filepath.Join(dataDir, "tempo.json")
}

// SQLiteStorePath returns the path to the SQLite database file.
func SQLiteStorePath(dataDir string) string {
	return filepath.Join(dataDir, "tempo.db")
}

package domain

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Store backends.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// DefaultLogLevel is the log level used when none is configured.
const DefaultLogLevel = "info"

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string    `toml:"-"`
	User     UserConfig  `toml:"user"`
	Tasks    TasksConfig `toml:"tasks"`
	Log      LogConfig   `toml:"log"`
	Timer    TimerConfig `toml:"timer"`
}

// UserConfig holds identity settings from [user] section.
type UserConfig struct {
	ID string `toml:"id,omitempty"` // Static user identity
}

// TasksConfig holds settings for task storage from [tasks] section.
type TasksConfig struct {
	Store           string `toml:"store,omitempty"`            // Storage backend: "json" (default), "sqlite" or "postgres"
	DSN             string `toml:"dsn,omitempty"`              // SQLite path or PostgreSQL DSN
	DefaultDuration int    `toml:"default_duration,omitempty"` // Planned minutes for new continuous tasks
	CascadeSessions bool   `toml:"cascade_sessions,omitempty"` // Delete sessions with their task
}

// TimerConfig holds settings for continuous task timers from [timer] section.
type TimerConfig struct {
	StopOnComplete bool `toml:"stop_on_complete,omitempty"` // Stop an active timer on completion
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tasks: TasksConfig{
			Store:           StoreJSON,
			DefaultDuration: DefaultDurationMinutes,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DurationOrDefault returns the configured default duration, falling back
// to DefaultDurationMinutes for unset or invalid values.
func (c TasksConfig) DurationOrDefault() int {
	if c.DefaultDuration <= 0 {
		return DefaultDurationMinutes
	}
	return c.DefaultDuration
}

// templateData holds all data for rendering the config template.
type templateData struct {
	DataDir         string
	UserID          string
	Store           string
	LogLevel        string
	DefaultDuration int
	CascadeSessions bool
	StopOnComplete  bool
}

// RenderConfigTemplate renders the commented config file for cfg.
func RenderConfigTemplate(cfg *Config, dataDir string) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplateContent)
	if err != nil {
		return "", err
	}
	data := templateData{
		DataDir:         dataDir,
		UserID:          cfg.User.ID,
		Store:           cfg.Tasks.Store,
		LogLevel:        cfg.Log.Level,
		DefaultDuration: cfg.Tasks.DurationOrDefault(),
		CascadeSessions: cfg.Tasks.CascadeSessions,
		StopOnComplete:  cfg.Timer.StopOnComplete,
	}
	if data.Store == "" {
		data.Store = StoreJSON
	}
	if data.LogLevel == "" {
		data.LogLevel = DefaultLogLevel
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

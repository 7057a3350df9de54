// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/tempo/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the data directory holding the local config
	globalConfDir string // Path to global config directory (e.g., ~/.config/tempo)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (local + global).
// Local config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	local, err := l.LoadLocal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- local (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if local != nil {
		base = mergeConfigs(base, local)
	}

	if err := validate(base); err != nil {
		return nil, err
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadLocal returns only the data-dir configuration.
func (l *Loader) LoadLocal() (*domain.Config, error) {
	if l.dataDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.dataDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
// Values of the wrong type are reported and otherwise ignored.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	section := func(name string, value any, fn func(k string, v any) bool) {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("[%s] must be a table", name))
			return
		}
		for k, v := range m {
			if !fn(k, v) {
				warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", name, k))
			}
		}
	}
	typeWarning := func(name, key, want string) {
		warnings = append(warnings, fmt.Sprintf("[%s] %s must be a %s", name, key, want))
	}

	for name, value := range raw {
		switch name {
		case "user":
			section(name, value, func(k string, v any) bool {
				if k != "id" {
					return false
				}
				if s, ok := v.(string); ok {
					res.User.ID = s
				} else {
					typeWarning(name, k, "string")
				}
				return true
			})
		case "tasks":
			section(name, value, func(k string, v any) bool {
				switch k {
				case "store", "dsn":
					s, ok := v.(string)
					if !ok {
						typeWarning(name, k, "string")
						return true
					}
					if k == "store" {
						res.Tasks.Store = s
					} else {
						res.Tasks.DSN = s
					}
				case "default_duration":
					if n, ok := v.(int64); ok {
						res.Tasks.DefaultDuration = int(n)
					} else {
						typeWarning(name, k, "integer")
					}
				case "cascade_sessions":
					if b, ok := v.(bool); ok {
						res.Tasks.CascadeSessions = b
					} else {
						typeWarning(name, k, "boolean")
					}
				default:
					return false
				}
				return true
			})
		case "timer":
			section(name, value, func(k string, v any) bool {
				if k != "stop_on_complete" {
					return false
				}
				if b, ok := v.(bool); ok {
					res.Timer.StopOnComplete = b
				} else {
					typeWarning(name, k, "boolean")
				}
				return true
			})
		case "log":
			section(name, value, func(k string, v any) bool {
				if k != "level" {
					return false
				}
				if s, ok := v.(string); ok {
					res.Log.Level = s
				} else {
					typeWarning(name, k, "string")
				}
				return true
			})
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", name))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
// Booleans can only be switched on by an override.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		User:  base.User,
		Tasks: base.Tasks,
		Timer: base.Timer,
		Log:   base.Log,
	}
	result.Warnings = append(result.Warnings, base.Warnings...)
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.User.ID != "" {
		result.User.ID = override.User.ID
	}
	if override.Tasks.Store != "" {
		result.Tasks.Store = override.Tasks.Store
	}
	if override.Tasks.DSN != "" {
		result.Tasks.DSN = override.Tasks.DSN
	}
	if override.Tasks.DefaultDuration != 0 {
		result.Tasks.DefaultDuration = override.Tasks.DefaultDuration
	}
	if override.Tasks.CascadeSessions {
		result.Tasks.CascadeSessions = true
	}
	if override.Timer.StopOnComplete {
		result.Timer.StopOnComplete = true
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return result
}

// validate rejects values no component can run with.
func validate(cfg *domain.Config) error {
	switch cfg.Tasks.Store {
	case domain.StoreJSON, domain.StoreSQLite:
	case domain.StorePostgres:
		if cfg.Tasks.DSN == "" {
			return fmt.Errorf("%w: [tasks] store = %q requires dsn", domain.ErrInvalidConfig, cfg.Tasks.Store)
		}
	default:
		return fmt.Errorf("%w: unknown [tasks] store %q", domain.ErrInvalidConfig, cfg.Tasks.Store)
	}

	if cfg.Tasks.DefaultDuration < 0 {
		return fmt.Errorf("%w: [tasks] default_duration cannot be negative", domain.ErrInvalidConfig)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("%w: [log] level %q", domain.ErrInvalidConfig, cfg.Log.Level)
	}
	return nil
}

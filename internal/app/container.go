// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/infra/config"
	"github.com/runoshun/tempo/internal/infra/identity"
	"github.com/runoshun/tempo/internal/infra/jsonstore"
	"github.com/runoshun/tempo/internal/infra/logging"
	"github.com/runoshun/tempo/internal/infra/sqlstore"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/runoshun/tempo/internal/usecase/shared"
)

// EnvDataDir names the environment variable that overrides the data directory.
const EnvDataDir = "TEMPO_DATA_DIR"

// Options holds the command-line overrides used to build a Container.
type Options struct {
	DataDir string // Data directory (empty = TEMPO_DATA_DIR or XDG default)
	User    string // User flag (empty = TEMPO_USER or [user] id)
}

// Config holds the application paths.
type Config struct {
	DataDir string // Directory holding the store, logs and local config
}

// Backend is a persistent store together with its initializer.
type Backend interface {
	domain.Repository
	domain.StoreInitializer
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Repo             domain.Repository
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	TaskLogger       domain.Logger

	// Pointer fields
	State     *state.Store
	Identity  *identity.Provider
	Logger    *slog.Logger
	AppConfig *domain.Config

	timerGuard *shared.InFlight
	closers    []io.Closer

	// Configuration
	Config Config
}

// DefaultDataDir returns the data directory from TEMPO_DATA_DIR, then
// $XDG_DATA_HOME/tempo, then ~/.local/share/tempo.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DefaultDataDir(dataHome), nil
}

// New creates a new Container from the data directory's configuration.
// The store is opened but not loaded; call LoadState before reading.
func New(opts Options) (*Container, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	backend, err := OpenStore(dataDir, appConfig.Tasks.Store, appConfig.Tasks.DSN)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(appConfig.Log.Level)
	taskLogger := logging.New(dataDir, level, domain.RealClock{})
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	c := &Container{
		Repo:             backend,
		StoreInitializer: backend,
		Clock:            domain.RealClock{},
		ConfigLoader:     configLoader,
		ConfigManager:    config.NewManager(dataDir),
		TaskLogger:       taskLogger,
		State:            state.New(),
		Identity:         identity.New(identity.Resolve(opts.User, appConfig)),
		Logger:           logger,
		AppConfig:        appConfig,
		timerGuard:       &shared.InFlight{},
		Config:           Config{DataDir: dataDir},
	}
	if closer, ok := backend.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	c.closers = append(c.closers, taskLogger)
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, backend Backend, userID string, clock domain.Clock, logger *slog.Logger) *Container {
	return &Container{
		Repo:             backend,
		StoreInitializer: backend,
		Clock:            clock,
		ConfigLoader:     config.NewLoaderWithGlobalDir(cfg.DataDir, ""),
		ConfigManager:    config.NewManagerWithGlobalDir(cfg.DataDir, ""),
		TaskLogger:       logging.New("", slog.LevelInfo, clock),
		State:            state.New(),
		Identity:         identity.New(userID),
		Logger:           logger,
		AppConfig:        domain.NewDefaultConfig(),
		timerGuard:       &shared.InFlight{},
		Config:           cfg,
	}
}

// OpenStore opens the backend named by kind. An empty dsn selects the
// default file in dataDir for file-backed stores.
func OpenStore(dataDir, kind, dsn string) (Backend, error) {
	switch kind {
	case "", domain.StoreJSON:
		if dsn == "" {
			dsn = domain.JSONStorePath(dataDir)
		}
		return jsonstore.New(dsn), nil
	case domain.StoreSQLite:
		if dsn == "" {
			dsn = domain.SQLiteStorePath(dataDir)
		}
		return openSQL(sqlstore.DialectSQLite, dsn)
	case domain.StorePostgres:
		if dsn == "" {
			return nil, fmt.Errorf("%w: postgres store requires a dsn", domain.ErrInvalidConfig)
		}
		return openSQL(sqlstore.DialectPostgres, dsn)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", domain.ErrInvalidConfig, kind)
	}
}

func openSQL(dialect sqlstore.Dialect, dsn string) (Backend, error) {
	store, err := sqlstore.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the store connection and log files.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// LoadState fills the entity store with the current user's data.
// Timer inconsistencies are reported on the diagnostic logger.
func (c *Container) LoadState(ctx context.Context) (*usecase.LoadStateOutput, error) {
	out, err := c.LoadStateUseCase().Execute(ctx, usecase.LoadStateInput{UserID: c.Identity.CurrentUser()})
	if err != nil {
		return nil, err
	}
	for _, w := range out.Warnings {
		c.Logger.Warn(w)
	}
	return out, nil
}

// WatchIdentity reloads the entity store whenever the identity changes.
// The returned function stops watching.
func (c *Container) WatchIdentity(ctx context.Context) (stop func()) {
	return c.Identity.Subscribe(func(userID string) {
		out, err := c.LoadStateUseCase().Execute(ctx, usecase.LoadStateInput{UserID: userID})
		if err != nil {
			c.Logger.Error("reload state", "user", userID, "error", err)
			return
		}
		c.Logger.Debug("reloaded state", "user", userID, "tasks", out.Tasks)
	})
}

// SwitchUser makes userID the current identity. A user without categories
// gets the default set first. The entity store follows through WatchIdentity.
func (c *Container) SwitchUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID != "" {
		seed := usecase.NewInitStore(c.StoreInitializer, c.Repo, identity.New(userID), c.Clock)
		if _, err := seed.Execute(ctx); err != nil {
			return err
		}
	}
	c.Identity.SetUser(userID)
	return nil
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer, c.Repo, c.Identity, c.Clock)
}

// LoadStateUseCase returns a new LoadState use case.
func (c *Container) LoadStateUseCase() *usecase.LoadState {
	return usecase.NewLoadState(c.Repo, c.State, c.TaskLogger)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Repo, c.State, c.Identity, c.ConfigLoader, c.Clock, c.TaskLogger)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Repo, c.State, c.Clock, c.TaskLogger)
}

// ToggleTaskUseCase returns a new ToggleTask use case.
func (c *Container) ToggleTaskUseCase() *usecase.ToggleTask {
	return usecase.NewToggleTask(c.EditTaskUseCase(), c.StopTaskUseCase(), c.State, c.ConfigLoader)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Repo, c.State, c.ConfigLoader, c.TaskLogger)
}

// ClearCompletedUseCase returns a new ClearCompleted use case.
func (c *Container) ClearCompletedUseCase() *usecase.ClearCompleted {
	return usecase.NewClearCompleted(c.Repo, c.State, c.ConfigLoader, c.TaskLogger)
}

// ReorderTasksUseCase returns a new ReorderTasks use case.
func (c *Container) ReorderTasksUseCase() *usecase.ReorderTasks {
	return usecase.NewReorderTasks(c.Repo, c.State)
}

// StartTaskUseCase returns a new StartTask use case.
// Start and stop share one in-flight guard per container.
func (c *Container) StartTaskUseCase() *usecase.StartTask {
	return usecase.NewStartTask(c.Repo, c.State, c.timerGuard, c.Clock, c.TaskLogger)
}

// StopTaskUseCase returns a new StopTask use case.
func (c *Container) StopTaskUseCase() *usecase.StopTask {
	return usecase.NewStopTask(c.Repo, c.State, c.timerGuard, c.Clock, c.TaskLogger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.State, c.Clock)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.State, c.Clock)
}

// GetElapsedUseCase returns a new GetElapsed use case.
func (c *Container) GetElapsedUseCase() *usecase.GetElapsed {
	return usecase.NewGetElapsed(c.State, c.Clock)
}

// TaskStatsUseCase returns a new TaskStats use case.
func (c *Container) TaskStatsUseCase() *usecase.TaskStats {
	return usecase.NewTaskStats(c.State, c.Clock)
}

// AddSubtaskUseCase returns a new AddSubtask use case.
func (c *Container) AddSubtaskUseCase() *usecase.AddSubtask {
	return usecase.NewAddSubtask(c.Repo, c.State, c.Clock, c.TaskLogger)
}

// ToggleSubtaskUseCase returns a new ToggleSubtask use case.
func (c *Container) ToggleSubtaskUseCase() *usecase.ToggleSubtask {
	return usecase.NewToggleSubtask(c.Repo, c.State, c.Clock)
}

// DeleteSubtaskUseCase returns a new DeleteSubtask use case.
func (c *Container) DeleteSubtaskUseCase() *usecase.DeleteSubtask {
	return usecase.NewDeleteSubtask(c.Repo, c.State)
}

// NewCategoryUseCase returns a new NewCategory use case.
func (c *Container) NewCategoryUseCase() *usecase.NewCategory {
	return usecase.NewNewCategory(c.Repo, c.State, c.Identity, c.Clock, c.TaskLogger)
}

// ListCategoriesUseCase returns a new ListCategories use case.
func (c *Container) ListCategoriesUseCase() *usecase.ListCategories {
	return usecase.NewListCategories(c.State)
}

// DeleteCategoryUseCase returns a new DeleteCategory use case.
func (c *Container) DeleteCategoryUseCase() *usecase.DeleteCategory {
	return usecase.NewDeleteCategory(c.Repo, c.State, c.TaskLogger)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.NewTaskUseCase(), c.NewCategoryUseCase(), c.EditTaskUseCase(), c.State)
}

// ExportTasksUseCase returns a new ExportTasks use case.
func (c *Container) ExportTasksUseCase() *usecase.ExportTasks {
	return usecase.NewExportTasks(c.State)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.State, c.Config.DataDir)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// MigrateStoreUseCase returns a new MigrateStore use case copying the
// configured store into dest.
func (c *Container) MigrateStoreUseCase(dest Backend) *usecase.MigrateStore {
	return usecase.NewMigrateStore(c.Repo, dest, dest)
}

// Package cli provides the command-line interface for tempo.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/tempo/internal/app"
	"github.com/runoshun/tempo/internal/tui"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupTimer = "timer"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// deps carries the container shared by every command.
// The root command opens it once the persistent flags are parsed.
type deps struct {
	c    *app.Container
	open func(app.Options) (*app.Container, error)
	opts app.Options
}

// close releases the container if one was opened.
func (d *deps) close() error {
	if d.c == nil {
		return nil
	}
	return d.c.Close()
}

// Execute runs the tempo command line with args and releases the container afterwards.
func Execute(ctx context.Context, version string, args []string) error {
	d := &deps{open: app.New}
	root := newRootCommand(d, version)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := d.close(); err == nil {
		err = cerr
	}
	return err
}

// skipsStateLoad reports whether cmd runs before or outside a loaded store.
func skipsStateLoad(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "init", "config", "migrate", "help", "completion":
			return true
		}
	}
	return false
}

// newRootCommand creates the root command for tempo.
func newRootCommand(d *deps, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "tempo",
		Short: "Task and time tracking",
		Long: `tempo keeps regular tasks with due dates and continuous tasks
with a start/stop timer. Continuous tasks accumulate time sessions;
regular tasks are grouped by views (today, upcoming, overdue, ...).

Run without arguments to open the terminal UI.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if d.c == nil {
				if d.open == nil {
					return nil
				}
				c, err := d.open(d.opts)
				if err != nil {
					return err
				}
				d.c = c
			}

			for _, w := range d.c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}

			if skipsStateLoad(cmd) {
				return nil
			}
			_, err := d.c.LoadState(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), d.c)
		},
	}

	root.PersistentFlags().StringVar(&d.opts.DataDir, "data-dir", "", "Data directory (default: $TEMPO_DATA_DIR or ~/.local/share/tempo)")
	root.PersistentFlags().StringVar(&d.opts.User, "user", "", "User id (default: $TEMPO_USER or [user] id)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupTimer, Title: "Time Tracking:"},
	)

	// Setup commands
	initCmd := newInitCommand(d)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(d)
	configCmd.GroupID = groupSetup

	migrateCmd := newMigrateCommand(d)
	migrateCmd.GroupID = groupSetup

	logsCmd := newLogsCommand(d)
	logsCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(d)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(d)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(d)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(d)
	editCmd.GroupID = groupTask

	doneCmd := newDoneCommand(d)
	doneCmd.GroupID = groupTask

	rmCmd := newRmCommand(d)
	rmCmd.GroupID = groupTask

	subtaskCmd := newSubtaskCommand(d)
	subtaskCmd.GroupID = groupTask

	reorderCmd := newReorderCommand(d)
	reorderCmd.GroupID = groupTask

	clearCmd := newClearCommand(d)
	clearCmd.GroupID = groupTask

	categoryCmd := newCategoryCommand(d)
	categoryCmd.GroupID = groupTask

	importCmd := newImportCommand(d)
	importCmd.GroupID = groupTask

	exportCmd := newExportCommand(d)
	exportCmd.GroupID = groupTask

	tuiCmd := newTUICommand(d)
	tuiCmd.GroupID = groupTask

	// Time tracking commands
	startCmd := newStartCommand(d)
	startCmd.GroupID = groupTimer

	stopCmd := newStopCommand(d)
	stopCmd.GroupID = groupTimer

	elapsedCmd := newElapsedCommand(d)
	elapsedCmd.GroupID = groupTimer

	statsCmd := newStatsCommand(d)
	statsCmd.GroupID = groupTimer

	root.AddCommand(
		initCmd,
		configCmd,
		migrateCmd,
		logsCmd,
		newCmd,
		listCmd,
		showCmd,
		editCmd,
		doneCmd,
		rmCmd,
		subtaskCmd,
		reorderCmd,
		clearCmd,
		categoryCmd,
		importCmd,
		exportCmd,
		tuiCmd,
		startCmd,
		stopCmd,
		elapsedCmd,
		statsCmd,
	)

	return root
}

// launchTUI runs the terminal UI until the user quits.
func launchTUI(ctx context.Context, c *app.Container) error {
	model := tui.New(c)
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

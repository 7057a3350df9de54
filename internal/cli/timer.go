package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/runoshun/tempo/internal/view"
	"github.com/spf13/cobra"
)

// newStartCommand creates the start command for starting a timer.
func newStartCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start the timer of a continuous task",
		Long: `Start the timer of a continuous task and open a time session.

Fails if the task is already running. Several tasks may run at once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.StartTaskUseCase().Execute(cmd.Context(), usecase.StartTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Started task %s at %s: %s\n",
				domain.ShortID(out.Task.ID), out.Session.StartTime.Local().Format("15:04"), out.Task.Title)
			return nil
		},
	}
}

// newStopCommand creates the stop command for stopping a timer.
func newStopCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id>",
		Short: "Stop the timer of a continuous task",
		Long: `Stop the timer of a continuous task, close its time session
and add the session's whole minutes to the tracked total.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.StopTaskUseCase().Execute(cmd.Context(), usecase.StopTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			for _, w := range out.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stopped task %s: +%s (total %s)\n",
				domain.ShortID(out.Task.ID),
				view.FormatMinutes(out.Minutes),
				view.FormatMinutes(out.Task.TotalTimeSpentMinutes),
			)
			return nil
		},
	}
}

// newElapsedCommand creates the elapsed command for reading running timers.
func newElapsedCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "elapsed [id]",
		Short: "Show running timers",
		Long: `Show the elapsed time and progress of running timers.

Without an id every active task is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			var input usecase.GetElapsedInput
			if len(args) > 0 {
				taskID, err := resolveTaskID(c.State, args[0])
				if err != nil {
					return err
				}
				input.TaskID = taskID
			}

			out, err := c.GetElapsedUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			if len(out.Readings) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No running timers")
				return nil
			}
			printReadings(cmd.OutOrStdout(), out.Readings, c.State)
			return nil
		},
	}
}

// printReadings prints timer readings as a table.
func printReadings(w io.Writer, readings []usecase.TimerReading, store *state.Store) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tELAPSED\tPROGRESS\tTOTAL\tTITLE")
	for _, r := range readings {
		title := ""
		if t := store.Task(r.TaskID); t != nil {
			title = t.Title
		}
		elapsed := "-"
		if r.Active {
			elapsed = view.FormatDuration(r.Elapsed)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\t%s\n",
			domain.ShortID(r.TaskID),
			elapsed,
			r.Progress,
			view.FormatMinutes(r.TotalMinutes),
			title,
		)
	}
}

// newStatsCommand creates the stats command.
func newStatsCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts and tracked time",
		Long: `Show per-view counts of regular tasks, open tasks per priority
and category, and a summary of continuous tasks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := d.c
			out, err := c.TaskStatsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), out, c.State)
			return nil
		},
	}
}

// printStats prints the dashboard counts.
func printStats(w io.Writer, out *usecase.TaskStatsOutput, store *state.Store) {
	_, _ = fmt.Fprintln(w, "[Views]")
	for _, v := range domain.AllViews() {
		_, _ = fmt.Fprintf(w, "%-10s %d\n", v.Display(), out.Views[v])
	}

	_, _ = fmt.Fprintln(w, "\n[Priorities]")
	for _, p := range domain.AllPriorities() {
		_, _ = fmt.Fprintf(w, "%-10s %d\n", p.Display(), out.Priorities[p])
	}

	if len(out.Categories) > 0 {
		_, _ = fmt.Fprintln(w, "\n[Categories]")
		ids := make([]string, 0, len(out.Categories))
		for id := range out.Categories {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return categoryName(store, ids[i]) < categoryName(store, ids[j])
		})
		for _, id := range ids {
			name := categoryName(store, id)
			if id == "" {
				name = "(none)"
			}
			_, _ = fmt.Fprintf(w, "%-10s %d\n", name, out.Categories[id])
		}
	}

	s := out.Continuous
	_, _ = fmt.Fprintln(w, "\n[Continuous]")
	_, _ = fmt.Fprintf(w, "%-10s %d\n", "Active", s.Active)
	_, _ = fmt.Fprintf(w, "%-10s %d\n", "Paused", s.Paused)
	_, _ = fmt.Fprintf(w, "%-10s %d\n", "Completed", s.Completed)
	_, _ = fmt.Fprintf(w, "%-10s %d\n", "Total", s.Total)
	_, _ = fmt.Fprintf(w, "%-10s %s\n", "Tracked", view.FormatMinutes(s.TotalMinutes))
}

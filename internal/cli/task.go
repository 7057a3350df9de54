package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/runoshun/tempo/internal/view"
	"github.com/spf13/cobra"
)

// timeLayout is the local time format accepted by time flags.
const timeLayout = "2006-01-02 15:04"

// parseTime parses a time flag as RFC 3339 or as local "YYYY-MM-DD HH:MM".
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want %q or RFC 3339)", s, timeLayout)
	}
	return t, nil
}

// newNewCommand creates the new command for creating tasks.
func newNewCommand(d *deps) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Notes       string
		Priority    string
		Due         string
		Reminder    string
		Category    string
		Start       string
		End         string
		Subtasks    []string
		Duration    int
		Continuous  bool
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new regular or continuous task.

Regular tasks are planned by due date. Continuous tasks carry a planned
duration and are tracked with 'tempo start' and 'tempo stop'.

Examples:
  # Create a regular task due tomorrow
  tempo new --title "Write report" --due 2026-10-17 --priority high

  # Create a task with a checklist
  tempo new --title "Release" --subtask "Tag" --subtask "Announce"

  # Create a 90 minute continuous task
  tempo new --continuous --title "Deep work" --duration 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := d.c
			input := usecase.NewTaskInput{
				Title:       opts.Title,
				Description: opts.Description,
				Notes:       opts.Notes,
				Subtasks:    opts.Subtasks,
				Duration:    opts.Duration,
				Type:        domain.TaskTypeRegular,
			}
			if opts.Continuous {
				input.Type = domain.TaskTypeContinuous
			}
			if opts.Priority != "" {
				p, err := domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				input.Priority = p
			}
			if opts.Due != "" {
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}
			if opts.Reminder != "" {
				at, err := parseTime(opts.Reminder)
				if err != nil {
					return err
				}
				input.ReminderAt = &at
			}
			if opts.Start != "" {
				at, err := parseTime(opts.Start)
				if err != nil {
					return err
				}
				input.StartTime = &at
			}
			if opts.End != "" {
				at, err := parseTime(opts.End)
				if err != nil {
					return err
				}
				input.EndTime = &at
			}
			if opts.Category != "" {
				id, err := resolveCategoryID(c.State, opts.Category)
				if err != nil {
					return err
				}
				input.CategoryID = id
			}

			out, err := c.NewTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", domain.ShortID(out.Task.ID), out.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&opts.Description, "body", "b", "", "Task description")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Priority: high, medium, low (default medium)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Reminder, "reminder", "", "Reminder time")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Category id or name")
	cmd.Flags().StringArrayVar(&opts.Subtasks, "subtask", nil, "Subtask title (repeatable)")
	cmd.Flags().BoolVar(&opts.Continuous, "continuous", false, "Create a continuous (timed) task")
	cmd.Flags().IntVar(&opts.Duration, "duration", 0, "Planned minutes of a continuous task (default from config)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "Planned start of a continuous task")
	cmd.Flags().StringVar(&opts.End, "end", "", "Planned end of a continuous task")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(d *deps) *cobra.Command {
	var opts struct {
		View       string
		Category   string
		Priority   string
		Search     string
		Sort       string
		Status     string
		Continuous bool
		JSON       bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display the tasks of one partition.

Regular tasks are listed by default; use --continuous for timed tasks.
Completed tasks are hidden unless --view completed is given.

Views: today, upcoming, all (default), completed.
Sort keys: due_date (default), priority, created_at.
Timer states (continuous only): all, active, paused, completed.

Examples:
  # Tasks due today, most urgent first
  tempo list --view today --sort priority

  # Running continuous tasks
  tempo list --continuous --status active

  # Search titles
  tempo list --search report --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := d.c
			input := usecase.ListTasksInput{
				Filters: domain.Filters{
					View:   domain.View(opts.View),
					Search: opts.Search,
				},
				Type:   domain.TaskTypeRegular,
				SortBy: domain.SortBy(opts.Sort),
				Status: domain.TimerFilter(opts.Status),
			}
			if opts.Continuous {
				input.Type = domain.TaskTypeContinuous
			}
			if opts.Priority != "" {
				p, err := domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				input.Filters.Priority = &p
			}
			if opts.Category != "" {
				id, err := resolveCategoryID(c.State, opts.Category)
				if err != nil {
					return err
				}
				input.Filters.CategoryID = id
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			if opts.JSON {
				tasks := out.Tasks
				if tasks == nil {
					tasks = []*domain.Task{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}

			if input.Type == domain.TaskTypeContinuous {
				printContinuousList(cmd.OutOrStdout(), out.Tasks, c.Clock.Now())
			} else {
				printTaskList(cmd.OutOrStdout(), out.Tasks, c.State, out.Today)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "View: today, upcoming, all, completed")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Only tasks of this category (id or name)")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Only tasks of this priority")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive title search")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort key: due_date, priority, created_at")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Timer state: all, active, paused, completed")
	cmd.Flags().BoolVar(&opts.Continuous, "continuous", false, "List continuous tasks")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// checkbox renders a completion flag.
func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// printTaskList prints regular tasks as a table.
func printTaskList(w io.Writer, tasks []*domain.Task, store *state.Store, today domain.Date) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tCATEGORY\tSUBTASKS\tTITLE")

	for _, task := range tasks {
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.String()
			if status := view.DueStatusOf(task, today); status == view.DueOverdue && !task.Completed {
				due += " (overdue)"
			}
		}

		subtasks := "-"
		if done, total := task.SubtaskProgress(); total > 0 {
			subtasks = fmt.Sprintf("%d/%d", done, total)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			domain.ShortID(task.ID),
			checkbox(task.Completed),
			task.Priority,
			due,
			categoryName(store, task.CategoryID),
			subtasks,
			task.Title,
		)
	}
}

// printContinuousList prints continuous tasks with their timer state.
func printContinuousList(w io.Writer, tasks []*domain.Task, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tELAPSED\tPLANNED\tTOTAL\tTITLE")

	for _, task := range tasks {
		elapsed := "-"
		if task.IsActive {
			elapsed = fmt.Sprintf("%s (%.0f%%)", view.FormatDuration(task.Elapsed(now)), task.Progress(now))
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			domain.ShortID(task.ID),
			task.ContinuousStatus(),
			elapsed,
			view.FormatMinutes(task.DurationMinutes),
			view.FormatMinutes(task.TotalTimeSpentMinutes),
			task.Title,
		)
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(d *deps) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

The id may be the full id or any unique prefix or suffix; lists show
the last 8 characters.

Output includes subtasks, the category and, for continuous tasks,
the live timer and the recorded time sessions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			if opts.JSON {
				type jsonTask struct {
					*domain.Task
					Subtasks []*domain.Subtask     `json:"subtasks"`
					Sessions []*domain.TimeSession `json:"sessions,omitempty"`
				}
				jt := jsonTask{Task: out.Task, Subtasks: out.Task.Subtasks, Sessions: out.Sessions}
				if jt.Subtasks == nil {
					jt.Subtasks = []*domain.Subtask{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(jt)
			}

			printTaskDetails(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskDetails prints a task with its subtasks and sessions.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	_, _ = fmt.Fprintf(w, "# Task %s: %s\n\n", domain.ShortID(task.ID), task.Title)

	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Description)
	}

	_, _ = fmt.Fprintf(w, "ID: %s\n", task.ID)
	_, _ = fmt.Fprintf(w, "Type: %s\n", task.Type)
	if task.IsContinuous() {
		_, _ = fmt.Fprintf(w, "Status: %s\n", task.ContinuousStatus().Display())
	} else {
		_, _ = fmt.Fprintf(w, "Completed: %t\n", task.Completed)
	}
	_, _ = fmt.Fprintf(w, "Priority: %s\n", task.Priority.Display())

	if out.Category != nil {
		_, _ = fmt.Fprintf(w, "Category: %s\n", out.Category.Name)
	} else {
		_, _ = fmt.Fprintln(w, "Category: none")
	}

	if task.DueDate != nil {
		_, _ = fmt.Fprintf(w, "Due: %s\n", task.DueDate)
	}
	if task.ReminderAt != nil {
		_, _ = fmt.Fprintf(w, "Reminder: %s\n", task.ReminderAt.Local().Format(timeLayout))
	}
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.Created.Format(time.RFC3339))
	if task.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "Completed at: %s\n", task.CompletedAt.Format(time.RFC3339))
	}

	if task.IsContinuous() {
		_, _ = fmt.Fprintf(w, "Planned: %s\n", view.FormatMinutes(task.DurationMinutes))
		_, _ = fmt.Fprintf(w, "Tracked: %s\n", view.FormatMinutes(out.Timer.TotalMinutes))
		if out.Timer.Active {
			_, _ = fmt.Fprintf(w, "Running: %s (%.0f%%)\n", view.FormatDuration(out.Timer.Elapsed), out.Timer.Progress)
		}
	}

	if task.Notes != "" {
		_, _ = fmt.Fprintf(w, "\nNotes:\n")
		for _, line := range strings.Split(strings.TrimSpace(task.Notes), "\n") {
			_, _ = fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(task.Subtasks) > 0 {
		done, total := task.SubtaskProgress()
		_, _ = fmt.Fprintf(w, "\nSubtasks (%d/%d):\n", done, total)
		for _, st := range task.Subtasks {
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", domain.ShortID(st.ID), checkbox(st.Completed), st.Title)
		}
	}

	if len(out.Sessions) > 0 {
		_, _ = fmt.Fprintln(w, "\nSessions:")
		for _, s := range out.Sessions {
			end := "running"
			if s.EndTime != nil {
				end = s.EndTime.Local().Format(timeLayout)
			}
			minutes := "-"
			if s.DurationMinutes != nil {
				minutes = view.FormatMinutes(*s.DurationMinutes)
			}
			_, _ = fmt.Fprintf(w, "  %s -> %s  %s\n", s.StartTime.Local().Format(timeLayout), end, minutes)
		}
	}
}

// newEditCommand creates the edit command for editing task fields.
func newEditCommand(d *deps) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Notes       string
		Priority    string
		Due         string
		Reminder    string
		Category    string
		Start       string
		End         string
		Duration    int
		NoDue       bool
		NoReminder  bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit the fields of an existing task.

Only the flags given are changed. The timer state of a continuous task
cannot be edited; use 'tempo start' and 'tempo stop'.

Examples:
  tempo edit 2e3f4a5b --title "New title" --priority low
  tempo edit 2e3f4a5b --no-due
  tempo edit 2e3f4a5b --category ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			input := usecase.EditTaskInput{
				TaskID:        taskID,
				ClearDueDate:  opts.NoDue,
				ClearReminder: opts.NoReminder,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Description = &opts.Description
			}
			if flags.Changed("notes") {
				input.Notes = &opts.Notes
			}
			if flags.Changed("priority") {
				p, err := domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				input.Priority = &p
			}
			if flags.Changed("due") {
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}
			if flags.Changed("reminder") {
				at, err := parseTime(opts.Reminder)
				if err != nil {
					return err
				}
				input.ReminderAt = &at
			}
			if flags.Changed("category") {
				id := ""
				if opts.Category != "" {
					if id, err = resolveCategoryID(c.State, opts.Category); err != nil {
						return err
					}
				}
				input.CategoryID = &id
			}
			if flags.Changed("duration") {
				input.Duration = &opts.Duration
			}
			if flags.Changed("start") {
				at, err := parseTime(opts.Start)
				if err != nil {
					return err
				}
				input.StartTime = &at
			}
			if flags.Changed("end") {
				at, err := parseTime(opts.End)
				if err != nil {
					return err
				}
				input.EndTime = &at
			}

			out, err := c.EditTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", domain.ShortID(out.Task.ID), out.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&opts.Description, "body", "b", "", "New description")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "New notes")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "New priority")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.NoDue, "no-due", false, "Remove the due date")
	cmd.Flags().StringVar(&opts.Reminder, "reminder", "", "New reminder time")
	cmd.Flags().BoolVar(&opts.NoReminder, "no-reminder", false, "Remove the reminder")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "New category id or name (empty = none)")
	cmd.Flags().IntVar(&opts.Duration, "duration", 0, "New planned minutes (continuous only)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "New planned start (continuous only)")
	cmd.Flags().StringVar(&opts.End, "end", "", "New planned end (continuous only)")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")
	cmd.MarkFlagsMutuallyExclusive("reminder", "no-reminder")

	return cmd
}

// newDoneCommand creates the done command for toggling completion.
func newDoneCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle task completion",
		Long: `Mark a task completed, or reopen a completed task.

Completing a running continuous task keeps its timer running unless
[timer] stop_on_complete is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.ToggleTaskUseCase().Execute(cmd.Context(), usecase.ToggleTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			for _, w := range out.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			if out.Stopped {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stopped timer of task %s\n", domain.ShortID(out.Task.ID))
			}
			verb := "Reopened"
			if out.Task.Completed {
				verb = "Completed"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s task %s: %s\n", verb, domain.ShortID(out.Task.ID), out.Task.Title)
			return nil
		},
	}
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task and its subtasks.

Time sessions stay in the store for reporting unless
[tasks] cascade_sessions is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Deleted task %s: %s", domain.ShortID(out.Task.ID), out.Task.Title)
			if out.SessionsDeleted > 0 {
				msg += fmt.Sprintf(" (%d session(s) removed)", out.SessionsDeleted)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// newReorderCommand creates the reorder command.
func newReorderCommand(d *deps) *cobra.Command {
	var continuous bool

	cmd := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the order of a task list",
		Long: `Rewrite the manual order of one partition.

Every task of the partition must be listed exactly once, in the new order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			ids := make([]string, len(args))
			for i, arg := range args {
				id, err := resolveTaskID(c.State, arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}

			typ := domain.TaskTypeRegular
			if continuous {
				typ = domain.TaskTypeContinuous
			}
			out, err := c.ReorderTasksUseCase().Execute(cmd.Context(), usecase.ReorderTasksInput{Type: typ, IDs: ids})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d %s task(s)\n", len(out.Tasks), typ)
			return nil
		},
	}

	cmd.Flags().BoolVar(&continuous, "continuous", false, "Reorder continuous tasks")

	return cmd
}

// newClearCommand creates the clear command for deleting completed tasks.
func newClearCommand(d *deps) *cobra.Command {
	var opts struct {
		Continuous bool
		Regular    bool
	}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete completed tasks",
		Long: `Delete every completed task. Use --regular or --continuous to
limit the cleanup to one partition.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var typ domain.TaskType
			switch {
			case opts.Continuous:
				typ = domain.TaskTypeContinuous
			case opts.Regular:
				typ = domain.TaskTypeRegular
			}

			out, err := d.c.ClearCompletedUseCase().Execute(cmd.Context(), usecase.ClearCompletedInput{Type: typ})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d completed task(s)\n", len(out.Deleted))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Continuous, "continuous", false, "Only continuous tasks")
	cmd.Flags().BoolVar(&opts.Regular, "regular", false, "Only regular tasks")
	cmd.MarkFlagsMutuallyExclusive("continuous", "regular")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/spf13/cobra"
)

// newSubtaskCommand creates the subtask command.
func newSubtaskCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage subtasks",
		Long:  `Add, toggle and delete the checklist items of a task.`,
	}

	cmd.AddCommand(
		newSubtaskAddCommand(d),
		newSubtaskToggleCommand(d),
		newSubtaskRmCommand(d),
	)
	return cmd
}

func newSubtaskAddCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Append a subtask to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			taskID, err := resolveTaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.AddSubtaskUseCase().Execute(cmd.Context(), usecase.AddSubtaskInput{
				TaskID: taskID,
				Title:  args[1],
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s: %s\n", domain.ShortID(out.Subtask.ID), out.Subtask.Title)
			return nil
		},
	}
}

func newSubtaskToggleCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle subtask completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			id, err := resolveSubtaskID(c.State, args[0])
			if err != nil {
				return err
			}

			out, err := c.ToggleSubtaskUseCase().Execute(cmd.Context(), usecase.ToggleSubtaskInput{SubtaskID: id})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(out.Subtask.Completed), out.Subtask.Title)
			return nil
		},
	}
}

func newSubtaskRmCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			id, err := resolveSubtaskID(c.State, args[0])
			if err != nil {
				return err
			}

			if err := c.DeleteSubtaskUseCase().Execute(cmd.Context(), usecase.DeleteSubtaskInput{SubtaskID: id}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted subtask %s\n", domain.ShortID(id))
			return nil
		},
	}
}

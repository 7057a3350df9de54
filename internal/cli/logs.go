package cli

import (
	"fmt"

	"github.com/runoshun/tempo/internal/usecase"
	"github.com/spf13/cobra"
)

// newLogsCommand creates the logs command.
func newLogsCommand(d *deps) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "Show the activity log",
		Long: `Show the global activity log, or the log of one task.

Examples:
  tempo logs
  tempo logs 2e3f4a5b -n 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			var input usecase.ShowLogsInput
			input.Lines = lines
			if len(args) > 0 {
				taskID, err := resolveTaskID(c.State, args[0])
				if err != nil {
					return err
				}
				input.TaskID = taskID
			}

			out, err := c.ShowLogsUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			if out.Content == "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No log entries in %s\n", out.LogPath)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to show from the end (0 = all)")

	return cmd
}

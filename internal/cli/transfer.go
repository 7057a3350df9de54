package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/spf13/cobra"
)

// newImportCommand creates the import command for creating tasks from a YAML file.
func newImportCommand(d *deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a YAML file",
		Long: `Create tasks from a YAML task file. Use "-" to read standard input.

Categories are matched by name, ignoring case; unknown categories are
created on the way.

File format:
  tasks:
    - title: Write report
      priority: high
      due: 2026-10-20
      category: Work
      subtasks: [Outline, Draft]
    - title: Deep work
      type: continuous
      duration: 90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			out, err := d.c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{
				Content: content,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if dryRun {
				_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
				for i, draft := range out.Drafts {
					_, _ = fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, draft.Type, draft.Title)
				}
				return nil
			}

			for _, name := range out.CreatedCategories {
				_, _ = fmt.Fprintf(w, "Created category %s\n", name)
			}
			for _, task := range out.Tasks {
				_, _ = fmt.Fprintf(w, "Created task %s: %s\n", domain.ShortID(task.ID), task.Title)
			}
			_, _ = fmt.Fprintf(w, "\nImported %d task(s)\n", len(out.Tasks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating anything")

	return cmd
}

// newExportCommand creates the export command for writing tasks as YAML.
func newExportCommand(d *deps) *cobra.Command {
	var opts struct {
		Out        string
		Continuous bool
		Regular    bool
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks as a YAML file",
		Long: `Write tasks in the format read by 'tempo import'.

Time sessions are not exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var typ domain.TaskType
			switch {
			case opts.Continuous:
				typ = domain.TaskTypeContinuous
			case opts.Regular:
				typ = domain.TaskTypeRegular
			}

			out, err := d.c.ExportTasksUseCase().Execute(cmd.Context(), usecase.ExportTasksInput{Type: typ})
			if err != nil {
				return err
			}

			if opts.Out == "" {
				_, err = cmd.OutOrStdout().Write(out.Content)
				return err
			}
			if err := os.WriteFile(opts.Out, out.Content, 0o644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d task(s) to %s\n", out.Count, opts.Out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (default: standard output)")
	cmd.Flags().BoolVar(&opts.Continuous, "continuous", false, "Only continuous tasks")
	cmd.Flags().BoolVar(&opts.Regular, "regular", false, "Only regular tasks")
	cmd.MarkFlagsMutuallyExclusive("continuous", "regular")

	return cmd
}

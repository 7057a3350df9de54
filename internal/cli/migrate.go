package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/runoshun/tempo/internal/app"
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/spf13/cobra"
)

// openStoreFunc opens a migration destination, allowing it to be replaced in tests.
var openStoreFunc = app.OpenStore

// newMigrateCommand creates the migrate command.
func newMigrateCommand(d *deps) *cobra.Command {
	var opts struct {
		To  string
		DSN string
		All bool
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy tasks to another store backend",
		Long: `Copy tasks, subtasks, time sessions and categories from the
configured store into another backend.

Tasks already present and identical in the destination are skipped; a
different version is reported as a conflict. Running it twice is safe.
Only the current user's data is copied unless --all is given.

After migrating, point [tasks] store (and dsn) at the destination.

Examples:
  # JSON file to SQLite in the data directory
  tempo migrate --to sqlite

  # To PostgreSQL
  tempo migrate --to postgres --dsn postgres://localhost/tempo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := d.c
			to := strings.ToLower(strings.TrimSpace(opts.To))
			if to == "" {
				return errors.New("required flag(s) \"to\" not set")
			}
			if to == c.AppConfig.Tasks.Store && opts.DSN == c.AppConfig.Tasks.DSN {
				return fmt.Errorf("%w: destination is the configured store", domain.ErrInvalidConfig)
			}

			dest, err := openStoreFunc(c.Config.DataDir, to, opts.DSN)
			if err != nil {
				return err
			}
			if closer, ok := dest.(io.Closer); ok {
				defer func() { _ = closer.Close() }()
			}

			input := usecase.MigrateStoreInput{}
			if !opts.All {
				input.UserID = c.Identity.CurrentUser()
			}
			out, err := c.MigrateStoreUseCase(dest).Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			if out.Total == 0 && out.Categories == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate")
				return nil
			}

			summary := fmt.Sprintf("Migrated %d task(s) to %s store", out.Migrated, to)
			if out.Skipped > 0 {
				summary += fmt.Sprintf(" (skipped %d existing)", out.Skipped)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), summary)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d categories, %d subtasks, %d sessions\n", out.Categories, out.Subtasks, out.Sessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "Destination store: json, sqlite, postgres")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "Destination file path or PostgreSQL DSN")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Copy every user's data")

	return cmd
}

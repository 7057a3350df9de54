package cli

import (
	"fmt"

	"github.com/runoshun/tempo/internal/infra/identity"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the task store",
		Long: `Initialize the configured task store.

Creates the store (JSON file, SQLite database or PostgreSQL schema)
if needed and seeds the default categories for a user that has none.
Running it again is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := d.c
			out, err := c.InitStoreUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Created {
				_, _ = fmt.Fprintf(w, "Initialized %s store in %s\n", c.AppConfig.Tasks.Store, c.Config.DataDir)
			} else {
				_, _ = fmt.Fprintf(w, "Store already initialized in %s\n", c.Config.DataDir)
			}
			for _, cat := range out.Seeded {
				_, _ = fmt.Fprintf(w, "Created category %s\n", cat.Name)
			}

			if c.Identity.CurrentUser() == "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no user set; use --user, $%s or [user] id\n", identity.EnvUser)
				return nil
			}
			_, err = c.LoadState(cmd.Context())
			return err
		},
	}
}

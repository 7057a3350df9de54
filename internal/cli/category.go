package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/spf13/cobra"
)

// newCategoryCommand creates the category command.
func newCategoryCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
		Long: `Create, list and delete task categories.

Deleting a category leaves its tasks in place; they show as uncategorized.`,
	}

	cmd.AddCommand(
		newCategoryNewCommand(d),
		newCategoryListCommand(d),
		newCategoryRmCommand(d),
	)
	return cmd
}

func newCategoryNewCommand(d *deps) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := d.c.NewCategoryUseCase().Execute(cmd.Context(), usecase.NewCategoryInput{
				Name:  args[0],
				Color: color,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created category %s: %s\n", domain.ShortID(out.Category.ID), out.Category.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Color as #RRGGBB (default "+domain.DefaultCategoryColor+")")

	return cmd
}

func newCategoryListCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := d.c.ListCategoriesUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()

			_, _ = fmt.Fprintln(tw, "ID\tCOLOR\tOPEN\tNAME")
			for _, cat := range out.Categories {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					domain.ShortID(cat.ID), cat.Color, out.Counts[cat.ID], cat.Name)
			}
			return nil
		},
	}
}

func newCategoryRmCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := d.c
			id, err := resolveCategoryID(c.State, args[0])
			if err != nil {
				return err
			}
			name := categoryName(c.State, id)

			if err := c.DeleteCategoryUseCase().Execute(cmd.Context(), usecase.DeleteCategoryInput{CategoryID: id}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", name)
			return nil
		},
	}
}

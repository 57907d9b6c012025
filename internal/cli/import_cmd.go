package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import allocations from a file",
	}

	cmd.AddCommand(
		newImportSelectionsCmd(app),
		newImportCSVCmd(app),
	)

	return cmd
}

func newImportSelectionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "selections FILE",
		Short: "Import a selection schema JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportSelections(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Imported %s: %d activities, %d subcomponents (version %d)\n",
				result.BusinessYear, result.ActivityCount, result.SubcomponentCount, result.Version)
			if result.CatalogMissCount > 0 {
				fmt.Printf("Note: %d subcomponent(s) had no catalog match and were kept as given.\n", result.CatalogMissCount)
			}
			return nil
		},
	}
}

func newImportCSVCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "csv FILE",
		Short: "Import allocations from a previously exported CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			by := yf.businessYear()
			if err := app.Export.ImportCSV(context.Background(), by, data); err != nil {
				return err
			}

			fmt.Printf("Imported CSV allocations for %s\n", by)
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

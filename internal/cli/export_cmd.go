package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a business year's allocations",
	}

	cmd.AddCommand(
		newExportFormatCmd("json", "Export allocations as relational JSON", app.Export.ExportJSON),
		newExportFormatCmd("csv", "Export allocations as flat CSV", app.Export.ExportCSV),
		newExportFormatCmd("sql", "Export allocations as SQL insert statements", app.Export.ExportSQL),
		newExportDBCmd(app),
	)

	return cmd
}

// writeOutput sends data to the given path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(data), path)
	return nil
}

func newExportFormatCmd(format, short string, render func(context.Context, domain.BusinessYear) ([]byte, error)) *cobra.Command {
	var yf yearFlags
	var out string

	cmd := &cobra.Command{
		Use:   format,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := render(context.Background(), yf.businessYear())
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}

	yf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newExportDBCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Persist allocations to the normalized relational tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			by := yf.businessYear()
			if err := app.Export.PersistNormalized(context.Background(), by); err != nil {
				return err
			}
			fmt.Printf("Persisted normalized rows for %s\n", by)
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

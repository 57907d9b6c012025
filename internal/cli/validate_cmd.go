package cli

import (
	"context"
	"fmt"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newValidateCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check allocation balance for a business year",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := app.Allocations.Validate(context.Background(), yf.businessYear())
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatReports(reports))
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show allocation statistics for a business year",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Stats.Summary(context.Background(), yf.businessYear())
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatSummary(summary))
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

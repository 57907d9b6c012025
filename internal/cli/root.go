package cli

import (
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Allocations service.AllocationService
	Export      service.ExportService
	Import      service.ImportService
	Stats       service.StatsService

	// IsInteractive reports whether stdin is a terminal; interactive
	// forms are skipped when it returns false.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "qra" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "qra",
		Short: "Qualified research activity allocation engine",
	}

	root.AddCommand(
		newActivityCmd(app),
		newSubCmd(app),
		newDistributeCmd(app),
		newValidateCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newStatsCmd(app),
	)

	return root
}

// yearFlags holds the --business/--year pair shared by every command
// that operates on a business year.
type yearFlags struct {
	business string
	year     int
}

func (f *yearFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.business, "business", "", "Business identifier")
	cmd.Flags().IntVar(&f.year, "year", 0, "Tax year")
	_ = cmd.MarkFlagRequired("business")
	_ = cmd.MarkFlagRequired("year")
}

func (f *yearFlags) businessYear() domain.BusinessYear {
	return domain.BusinessYear{BusinessID: f.business, Year: f.year}
}

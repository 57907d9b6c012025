package cli

import (
	"context"
	"fmt"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli/formatter"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/service"
	"github.com/spf13/cobra"
)

func newSubCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subcomponent allocations",
	}

	cmd.AddCommand(
		newSubSelectCmd(app),
		newSubDeselectCmd(app),
	)

	return cmd
}

func newSubSelectCmd(app *App) *cobra.Command {
	var yf yearFlags
	var activity, phase, step, roles string
	var timePct, freqPct, yearPct float64
	var startYear int
	var nonRD bool

	cmd := &cobra.Command{
		Use:   "select SUBCOMPONENT",
		Short: "Select a subcomponent under an activity step",
		Long:  "SUBCOMPONENT may be a catalog id or a display name; names are matched tolerantly and misses are flagged rather than rejected.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: activity}
			sel := service.SubcomponentSelection{
				Phase:            phase,
				Step:             step,
				Subcomponent:     args[0],
				TimePercent:      timePct,
				FrequencyPercent: freqPct,
				YearPercent:      yearPct,
				StartYear:        startYear,
				Roles:            parseRoles(roles),
				IsNonRD:          nonRD,
			}

			alloc, err := app.Allocations.SelectSubcomponent(context.Background(), ref, sel)
			if err != nil {
				return err
			}

			fmt.Printf("Selected %s under %s / %s (time %s, frequency %s)\n",
				alloc.SubcomponentName, alloc.Phase, alloc.Step,
				formatter.Percent(alloc.TimePercent), formatter.Percent(alloc.FrequencyPercent))
			if alloc.CatalogMiss {
				fmt.Println("Note: no catalog match; allocation kept with the name as given.")
			}
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().StringVar(&activity, "activity", "", "Activity the subcomponent belongs to")
	cmd.Flags().StringVar(&phase, "phase", "", "Research phase name")
	cmd.Flags().StringVar(&step, "step", "", "Step name within the phase")
	cmd.Flags().Float64Var(&timePct, "time", 0, "Time percent within the step (0-100)")
	cmd.Flags().Float64Var(&freqPct, "frequency", 100, "Frequency percent within the step (0-100)")
	cmd.Flags().Float64Var(&yearPct, "year-percent", 100, "Year percent (0-100)")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "First year the subcomponent applies (defaults to the business year)")
	cmd.Flags().StringVar(&roles, "roles", "", "Comma separated role list")
	cmd.Flags().BoolVar(&nonRD, "non-rd", false, "Mark the allocation as non-R&D")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

func newSubDeselectCmd(app *App) *cobra.Command {
	var yf yearFlags
	var activity, phase, step string

	cmd := &cobra.Command{
		Use:   "deselect SUBCOMPONENT_ID",
		Short: "Remove a subcomponent allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: activity}
			key := domain.AllocationKey{Phase: phase, Step: step, SubcomponentID: args[0]}

			if err := app.Allocations.DeselectSubcomponent(context.Background(), ref, key); err != nil {
				return err
			}

			fmt.Printf("Deselected %s from %s / %s\n", args[0], phase, step)
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().StringVar(&activity, "activity", "", "Activity the subcomponent belongs to")
	cmd.Flags().StringVar(&phase, "phase", "", "Research phase name")
	cmd.Flags().StringVar(&step, "step", "", "Step name within the phase")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/spf13/cobra"
)

func newDistributeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Redistribute percentages across an activity",
	}

	cmd.AddCommand(
		newDistributeTimeCmd(app),
		newDistributeFrequencyCmd(app),
	)

	return cmd
}

func newDistributeTimeCmd(app *App) *cobra.Command {
	var yf yearFlags
	var activity string

	cmd := &cobra.Command{
		Use:   "time",
		Short: "Even out step time across unlocked steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: activity}
			if err := app.Allocations.DistributeStepTime(context.Background(), ref); err != nil {
				return err
			}
			fmt.Printf("Redistributed step time for activity %s\n", activity)
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().StringVar(&activity, "activity", "", "Activity to redistribute")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func newDistributeFrequencyCmd(app *App) *cobra.Command {
	var yf yearFlags
	var activity, phase, step string

	cmd := &cobra.Command{
		Use:   "frequency",
		Short: "Even out frequency across a step's subcomponents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: activity}
			if err := app.Allocations.DistributeFrequency(context.Background(), ref, phase, step); err != nil {
				return err
			}
			fmt.Printf("Redistributed frequency for %s / %s\n", phase, step)
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().StringVar(&activity, "activity", "", "Activity to redistribute")
	cmd.Flags().StringVar(&phase, "phase", "", "Research phase name")
	cmd.Flags().StringVar(&step, "step", "", "Step name within the phase")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

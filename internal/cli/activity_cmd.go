package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli/formatter"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/service"
	"github.com/spf13/cobra"
)

// parseRoles splits a comma separated role list, dropping empty entries.
func parseRoles(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var roles []string
	for _, r := range strings.Split(input, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func findConfiguration(ctx context.Context, app *App, ref domain.ActivityRef) (*domain.ActivityConfiguration, error) {
	snap, err := app.Allocations.Get(ctx, ref.BusinessYear)
	if err != nil {
		return nil, err
	}
	for _, cfg := range snap.Configurations {
		if cfg.ActivityID == ref.ActivityID {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("activity %q is not selected for %s", ref.ActivityID, ref.BusinessYear)
}

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage selected research activities",
	}

	cmd.AddCommand(
		newActivitySelectCmd(app),
		newActivityListCmd(app),
		newActivityShowCmd(app),
		newActivityEditCmd(app),
		newActivityDeselectCmd(app),
		newActivityLockCmd(app),
		newActivityUnlockCmd(app),
	)

	return cmd
}

func newActivitySelectCmd(app *App) *cobra.Command {
	var yf yearFlags
	var practice float64
	var roles string

	cmd := &cobra.Command{
		Use:   "select ACTIVITY",
		Short: "Select an activity for a business year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Allocations.SelectActivity(context.Background(), yf.businessYear(), args[0], practice, parseRoles(roles))
			if err != nil {
				return err
			}

			fmt.Printf("Selected activity %s at %s practice\n", cfg.ActivityName, formatter.Percent(cfg.PracticePercent))
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().Float64Var(&practice, "practice", 100, "Practice percent (0-100)")
	cmd.Flags().StringVar(&roles, "roles", "", "Comma separated role list")

	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List selected activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Allocations.Get(context.Background(), yf.businessYear())
			if err != nil {
				return err
			}

			if len(snap.Configurations) == 0 {
				fmt.Println("No activities selected.")
				return nil
			}

			fmt.Printf("%s\n", formatter.FormatConfigurationList(snap.Configurations))
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

func newActivityShowCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "show ACTIVITY",
		Short: "Show an activity's allocation detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: args[0]}
			cfg, err := findConfiguration(context.Background(), app, ref)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatConfigurationDetail(cfg))
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

func newActivityEditCmd(app *App) *cobra.Command {
	var yf yearFlags
	var practice, nonRD float64
	var active bool
	var roles string

	cmd := &cobra.Command{
		Use:   "edit ACTIVITY",
		Short: "Edit activity-level allocation fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: args[0]}

			var edit service.ActivityEdit
			flagged := cmd.Flags().Changed("practice") || cmd.Flags().Changed("nonrd") ||
				cmd.Flags().Changed("active") || cmd.Flags().Changed("roles")

			switch {
			case flagged:
				if cmd.Flags().Changed("practice") {
					edit.PracticePercent = &practice
				}
				if cmd.Flags().Changed("nonrd") {
					edit.NonRDTime = &nonRD
				}
				if cmd.Flags().Changed("active") {
					edit.Active = &active
				}
				if cmd.Flags().Changed("roles") {
					edit.Roles = parseRoles(roles)
				}
			case app.interactive():
				var practiceStr, nonRDStr, rolesStr string
				if err := activityEditForm(&practiceStr, &nonRDStr, &rolesStr).Run(); err != nil {
					return err
				}
				if s := strings.TrimSpace(practiceStr); s != "" {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return fmt.Errorf("invalid practice percent %q: %w", s, err)
					}
					edit.PracticePercent = &v
				}
				if s := strings.TrimSpace(nonRDStr); s != "" {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return fmt.Errorf("invalid non-R&D percent %q: %w", s, err)
					}
					edit.NonRDTime = &v
				}
				if s := strings.TrimSpace(rolesStr); s != "" {
					edit.Roles = parseRoles(s)
				}
			default:
				return fmt.Errorf("no fields to edit; pass --practice, --nonrd, --active, or --roles")
			}

			cfg, err := app.Allocations.UpdateActivity(ctx, ref, edit)
			if err != nil {
				return err
			}

			fmt.Printf("Updated activity %s\n", cfg.ActivityName)
			return nil
		},
	}

	yf.register(cmd)
	cmd.Flags().Float64Var(&practice, "practice", 0, "Practice percent (0-100)")
	cmd.Flags().Float64Var(&nonRD, "nonrd", 0, "Non-R&D time percent (0-100)")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the activity is active")
	cmd.Flags().StringVar(&roles, "roles", "", "Comma separated role list")

	return cmd
}

func newActivityDeselectCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "deselect ACTIVITY",
		Short: "Remove an activity and all its allocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: args[0]}
			if err := app.Allocations.DeselectActivity(context.Background(), ref); err != nil {
				return err
			}
			fmt.Printf("Deselected activity %s\n", args[0])
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

func newActivityLockCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "lock ACTIVITY STEP",
		Short: "Lock a step's time so redistribution skips it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: args[0]}
			if err := app.Allocations.SetStepLock(context.Background(), ref, args[1], true); err != nil {
				return err
			}
			fmt.Printf("Locked step %s\n", args[1])
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

func newActivityUnlockCmd(app *App) *cobra.Command {
	var yf yearFlags

	cmd := &cobra.Command{
		Use:   "unlock ACTIVITY STEP",
		Short: "Unlock a previously locked step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ActivityRef{BusinessYear: yf.businessYear(), ActivityID: args[0]}
			if err := app.Allocations.SetStepLock(context.Background(), ref, args[1], false); err != nil {
				return err
			}
			fmt.Printf("Unlocked step %s\n", args[1])
			return nil
		},
	}

	yf.register(cmd)

	return cmd
}

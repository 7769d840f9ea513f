package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the seed file's locations and sample plans to the workspace",
		Long:  "Plans whose place already exists (ignoring case) are left untouched, so seeding can be repeated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.Seed == nil {
				return errors.New("no seed file loaded")
			}
			actor, err := app.actor(cmd)
			if err != nil {
				return err
			}
			if err := app.load(ctx); err != nil {
				return err
			}

			addedLocations := 0
			// Oldest first so the first seed location ends up on top.
			for i := len(app.Seed.Locations) - 1; i >= 0; i-- {
				_, added, err := app.Locations.AddLocationIfNew(ctx, app.Seed.Locations[i])
				if err != nil {
					return err
				}
				if added {
					addedLocations++
				}
			}

			plans, err := app.Seed.BuildPlans(actor, time.Now())
			if err != nil {
				return err
			}
			created, skipped := 0, 0
			for _, p := range plans {
				_, err := app.Plans.CreatePlan(ctx, actor, models.InputFromPlan(p))
				switch {
				case errors.Is(err, core.ErrDuplicatePlace):
					skipped++
				case err != nil:
					return err
				default:
					created++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d locations and %d plans (%d already present)\n", addedLocations, created, skipped)
			return nil
		},
	}
}

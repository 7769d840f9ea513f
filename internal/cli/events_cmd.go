package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"couple-plans-backend-go/internal/models"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect plan change events",
	}
	cmd.AddCommand(newEventsTailCmd(app))
	return cmd
}

func newEventsTailCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Print plan events from the message queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Events == nil {
				return errors.New("RABBITMQ_URL is not configured")
			}
			out := cmd.OutOrStdout()
			return app.Events.Tail(cmd.Context(), func(e models.PlanEvent) {
				fmt.Fprintf(out, "%s  %-13s %-10s %s (%s)\n",
					e.OccurredAt.Local().Format(time.DateTime), e.Type, e.Actor, e.Place, e.PlanID)
			})
		},
	}
}

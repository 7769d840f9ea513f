// Package cli implements the plansctl maintenance commands.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/internal/seed"
)

// EventTailer streams plan events from the message queue.
type EventTailer interface {
	Tail(ctx context.Context, handle func(models.PlanEvent)) error
}

// App holds references to the services used by CLI commands.
type App struct {
	Plans     core.PlanService
	Locations core.LocationService
	Users     []models.User
	Seed      *seed.Seed
	Events    EventTailer // nil when no message queue is configured
	// Load fetches the shared workspace before commands that read or write it.
	Load func(ctx context.Context) error
}

// NewRootCmd creates the top-level "plansctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "plansctl",
		Short:         "Maintenance tool for the shared couple plans workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("as", "", "collaborator username or email the changes are attributed to (default: first admin)")

	root.AddCommand(
		newExportCmd(app),
		newImportCmd(app),
		newSeedCmd(app),
		newEventsCmd(app),
	)

	return root
}

func (a *App) load(ctx context.Context) error {
	if a.Load == nil {
		return nil
	}
	return a.Load(ctx)
}

// actor resolves the --as flag against the collaborator allow-list.
func (a *App) actor(cmd *cobra.Command) (core.Actor, error) {
	as, _ := cmd.Flags().GetString("as")
	as = strings.ToLower(strings.TrimSpace(as))

	for _, u := range a.Users {
		if (as == "" && u.Role == models.RoleAdmin) || (as != "" && (u.Username == as || u.Email == as)) {
			return core.Actor{Username: u.Username, Email: u.Email}, nil
		}
	}
	if as == "" && len(a.Users) > 0 {
		return core.Actor{Username: a.Users[0].Username, Email: a.Users[0].Email}, nil
	}
	return core.Actor{}, fmt.Errorf("%q is not an allow-listed collaborator", as)
}

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"couple-plans-backend-go/internal/core"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a JSON export (or a bare array of plans) into the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if err := app.load(ctx); err != nil {
				return err
			}

			result, err := app.Plans.ImportPlans(ctx, actor, data)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d plans, skipped %d\n", result.Imported, result.Skipped)
			}
			if errors.Is(err, core.ErrRemoteSync) {
				return fmt.Errorf("import stopped before every plan reached Firestore: %w", err)
			}
			return err
		},
	}
}

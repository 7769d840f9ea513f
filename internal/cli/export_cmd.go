package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"couple-plans-backend-go/internal/core"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every plan to a JSON export file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.load(ctx); err != nil {
				return err
			}

			export := app.Plans.ExportPlans(ctx)
			data, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if out == "" {
				out = core.ExportFileName(export.ExportedAt)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d plans to %s\n", len(export.Plans), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file ("-" for stdout, default couple-plans-YYYY-MM-DD.json)`)
	return cmd
}

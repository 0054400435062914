package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/cli/render"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show deployment records of the selected network",
		Args:  cobra.NoArgs,
		Example: `  anchor show -n sepolia
  anchor show --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowRecords.Run(cmd.Context())
			if err != nil {
				return err
			}

			return render.NewRecordsRenderer(cmd.OutOrStdout(), f).Render(result)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", string(render.FormatTable), "Output format: table, json or yaml")

	return cmd
}

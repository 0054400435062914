package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// confirm asks a yes/no question on the terminal
var confirm = func(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("input cancelled: %w", err)
	}
	return true, nil
}

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var yes, dryRun bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the deployment records of the selected network",
		Long: `Delete every deployment record of the selected network's chain. Contracts on
chain are not touched; the next deploy run finds them at their addresses and
records them again as reused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// First, collect records to reset (dry run)
			result, err := app.ResetRecords.Run(cmd.Context(), usecase.ResetRecordsParams{DryRun: true})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 {
				fmt.Fprintf(out, "Nothing to reset. No deployment records found on chain %d.\n", result.ChainID)
				return nil
			}

			fmt.Fprintf(out, "Found %d record(s) on chain %d:\n", len(result.Removed), result.ChainID)
			for _, name := range result.Removed {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out)

			if dryRun {
				return nil
			}

			// Handle confirmation
			if !yes {
				if app.Config.NonInteractive {
					return fmt.Errorf("refusing to reset without confirmation in non-interactive mode, pass --yes")
				}
				ok, err := confirm(fmt.Sprintf("Delete %d record(s) on chain %d? This cannot be undone", len(result.Removed), result.ChainID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			// Execute the actual reset
			result, err = app.ResetRecords.Run(cmd.Context(), usecase.ResetRecordsParams{})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Successfully reset %d record(s) on chain %d.\n", len(result.Removed), result.ChainID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the records without deleting them")

	return cmd
}

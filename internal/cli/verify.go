package cli

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/cli/render"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// ErrVerificationFailed is returned when a verified contract did not match.
var ErrVerificationFailed = errors.New("verification failed")

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var recompile bool

	cmd := &cobra.Command{
		Use:   "verify [contracts...]",
		Short: "Check recorded deployments against live chain code",
		Long: `Compare the code at every recorded address with the expected runtime code.
Immutable regions are masked before comparing.

By default the expected code comes from the current artifact, or from the
record when the artifact is gone. With --recompile the runtime code is rebuilt
with solc from the recorded compiler metadata instead.`,
		Example: `  anchor verify -n sepolia
  anchor verify Counter --recompile`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.VerifyContracts.Run(cmd.Context(), usecase.VerifyContractsParams{
				Contracts: args,
				Recompile: recompile,
			})
			app.Progress.Stop()
			if err != nil {
				return err
			}

			if err := render.NewVerifyRenderer(cmd.OutOrStdout()).Render(result); err != nil {
				return err
			}

			if !result.AllMatched() {
				failed := lo.CountBy(result.Results, func(v usecase.ContractVerification) bool {
					return v.Status != usecase.VerificationMatch
				})
				return fmt.Errorf("%w: %d of %d contract(s)", ErrVerificationFailed, failed, len(result.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&recompile, "recompile", false, "Rebuild the expected code with solc from recorded metadata")

	return cmd
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/cli/render"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// ErrReviewRequired is returned by a strict deploy that reused contracts
// whose code differs from their artifacts.
var ErrReviewRequired = errors.New("reused contracts need review")

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "deploy [contracts...]",
		Short: "Deploy contracts at their deterministic addresses",
		Long: `Deploy every contract listed in [project] contracts, or the contracts given as
arguments, through the singleton CREATE2 factory. The factory is bootstrapped
first when the chain does not have it yet.

A contract whose address already holds code is reused and recorded without a
transaction. Reused code that differs from the artifact is reported in a review
section; pass --strict to make that a failure.`,
		Example: `  anchor deploy --network sepolia
  anchor deploy Counter Token -n mainnet --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.DeployContracts.Run(cmd.Context(), usecase.DeployContractsParams{Contracts: args})
			app.Progress.Stop()

			renderer := render.NewDeployRenderer(cmd.OutOrStdout())
			if err != nil {
				// Records persisted before the failure are kept, show what got done
				if result != nil && len(result.Outcomes) > 0 {
					_ = renderer.Render(result)
				}
				return err
			}
			if err := renderer.Render(result); err != nil {
				return err
			}

			if strict && len(result.Warnings) > 0 {
				return fmt.Errorf("%w: %d reused contract(s) differ from their artifacts", ErrReviewRequired, len(result.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a reused contract differs from its artifact")

	return cmd
}

// NewFactoryCmd creates the factory command
func NewFactoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factory",
		Short: "Bootstrap the singleton factory on the selected network",
		Long: `Check the selected network for the singleton CREATE2 factory and deploy it
when missing: the configured account funds the bootstrap deployer, then the
pre-signed factory creation transaction is submitted as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.EnsureFactory.Run(cmd.Context())
			app.Progress.Stop()
			if err != nil {
				return err
			}

			return render.NewFactoryRenderer(cmd.OutOrStdout()).Render(result)
		},
	}
}

package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/cli/render"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// NewAddressCmd creates the address command
func NewAddressCmd() *cobra.Command {
	var (
		factory string
		chainID uint64
	)

	cmd := &cobra.Command{
		Use:   "address [contracts...]",
		Short: "Compute deterministic addresses without touching a chain",
		Long: `Print the address every contract will be deployed at. Nothing is sent and no
RPC endpoint is contacted: the factory comes from --factory or from the
registry entry of --chain-id (default: the chain_id of the selected network).`,
		Example: `  anchor address --chain-id 1
  anchor address Counter --factory 0x4e59b44847b379578588920cA78FbF26c0B4956C`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.PreviewAddressesParams{Contracts: args, ChainID: chainID}
			if factory != "" {
				if !common.IsHexAddress(factory) {
					return fmt.Errorf("invalid factory address %q", factory)
				}
				addr := common.HexToAddress(factory)
				params.Factory = &addr
			}

			result, err := app.PreviewAddresses.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return render.NewAddressRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&factory, "factory", "", "Factory address to derive from")
	cmd.Flags().Uint64Var(&chainID, "chain-id", 0, "Chain whose registry factory to derive from")

	return cmd
}

// NewChainsCmd creates the chains command
func NewChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List chains the factory can be bootstrapped on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			return render.NewChainsRenderer(cmd.OutOrStdout()).Render(app.ListChains.Run())
		},
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// ErrNetworkRequired is returned by use cases that need a target chain when
// no network was selected.
var ErrNetworkRequired = errors.New("network is required, pass --network or configure exactly one network")

// resolveChainID returns the configured chain id, asking the node only when
// the network does not pin one.
func resolveChainID(ctx context.Context, cfg *config.RuntimeConfig, gateway ChainGateway) (uint64, error) {
	if cfg.Network == nil {
		return 0, ErrNetworkRequired
	}
	if cfg.Network.ChainID != 0 {
		return cfg.Network.ChainID, nil
	}
	chainID, err := gateway.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	return chainID, nil
}

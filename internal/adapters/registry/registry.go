package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// The built-in entries describe the keyless deterministic deployment proxy.
// Its creation transaction predates EIP-155, so one signed transaction is
// valid on every chain that still accepts unprotected transactions.
//
//go:embed deployments.json
var builtinDeployments []byte

// Registry maps chain ids to deterministic deployment info
type Registry struct {
	entries map[uint64]*domain.DeterministicDeploymentInfo
}

// ProvideRegistry creates the registry for Wire dependency injection
func ProvideRegistry(cfg *config.RuntimeConfig, log *slog.Logger) (*Registry, error) {
	r, err := New(cfg.Deterministic.RegistryFile)
	if err != nil {
		return nil, err
	}
	if cfg.Deterministic.RegistryFile != "" {
		log.Debug("loaded operator registry", "component", "Registry", "file", cfg.Deterministic.RegistryFile, "chains", len(r.entries))
	}
	return r, nil
}

// New loads the built-in entries and merges the operator file over them.
// An empty path uses the built-in entries only.
func New(operatorFile string) (*Registry, error) {
	builtin, err := parse(builtinDeployments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in registry: %w", err)
	}

	entries := builtin
	if operatorFile != "" {
		data, err := os.ReadFile(operatorFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry file: %w", err)
		}
		overrides, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", operatorFile, err)
		}
		entries = lo.Assign(builtin, overrides)
	}

	return &Registry{entries: entries}, nil
}

func parse(data []byte) (map[uint64]*domain.DeterministicDeploymentInfo, error) {
	var entries map[uint64]*domain.DeterministicDeploymentInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for chainID, info := range entries {
		if err := validate(info); err != nil {
			return nil, fmt.Errorf("chain %d: %w", chainID, err)
		}
	}
	return entries, nil
}

func validate(info *domain.DeterministicDeploymentInfo) error {
	switch {
	case info == nil:
		return fmt.Errorf("empty entry")
	case info.Factory == (common.Address{}):
		return fmt.Errorf("factory is required")
	case info.Deployer == (common.Address{}):
		return fmt.Errorf("deployer is required")
	case info.Funding == nil || info.Funding.Sign() < 0:
		return fmt.Errorf("funding must be a non-negative amount")
	case len(info.SignedTransaction) == 0:
		return fmt.Errorf("signedTransaction is required")
	}
	return nil
}

// Lookup returns the info registered for a chain
func (r *Registry) Lookup(chainID uint64) (*domain.DeterministicDeploymentInfo, error) {
	info, ok := r.entries[chainID]
	if !ok {
		return nil, domain.UnsupportedChainError{ChainID: chainID}
	}
	return info, nil
}

// List returns a copy of every registered chain. Entries are shared and
// must not be modified.
func (r *Registry) List() map[uint64]*domain.DeterministicDeploymentInfo {
	return maps.Clone(r.entries)
}

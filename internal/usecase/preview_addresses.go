package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
)

// PreviewAddressesParams contains parameters for address preview
type PreviewAddressesParams struct {
	Contracts []string
	// Factory overrides the registry factory
	Factory *common.Address
	// ChainID selects the registry entry, default is the configured chain id
	ChainID uint64
}

// PreviewAddressesResult contains the computed targets
type PreviewAddressesResult struct {
	Dialect domain.Dialect
	Factory common.Address
	Salt    domain.Salt
	Targets []*domain.DeploymentTarget
}

// PreviewAddresses computes deterministic addresses without touching a chain.
type PreviewAddresses struct {
	config    *config.RuntimeConfig
	artifacts ArtifactSource
	registry  DeploymentInfoRegistry
}

// NewPreviewAddresses creates a new PreviewAddresses use case
func NewPreviewAddresses(cfg *config.RuntimeConfig, artifacts ArtifactSource, registry DeploymentInfoRegistry) *PreviewAddresses {
	return &PreviewAddresses{config: cfg, artifacts: artifacts, registry: registry}
}

// Run derives the target of every requested contract.
func (uc *PreviewAddresses) Run(ctx context.Context, params PreviewAddressesParams) (*PreviewAddressesResult, error) {
	names := lo.Uniq(params.Contracts)
	if len(names) == 0 {
		names = uc.config.Project.Contracts
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no contracts given and none configured in [project] contracts")
	}

	dialect := domain.DialectEVM
	if uc.config.Network != nil {
		dialect = uc.config.Network.Dialect
	}
	scheme, err := create2.ForDialect(dialect)
	if err != nil {
		return nil, err
	}

	factory, err := uc.resolveFactory(params)
	if err != nil {
		return nil, err
	}

	result := &PreviewAddressesResult{
		Dialect: scheme.Dialect(),
		Factory: factory,
		Salt:    uc.config.Project.Salt,
	}
	for _, name := range names {
		artifact, err := uc.artifacts.GetArtifact(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact: %w", err)
		}
		target, err := create2.Target(scheme, factory, artifact, uc.config.Project.Salt, nil)
		if err != nil {
			return nil, err
		}
		result.Targets = append(result.Targets, target)
	}
	return result, nil
}

func (uc *PreviewAddresses) resolveFactory(params PreviewAddressesParams) (common.Address, error) {
	if params.Factory != nil {
		return *params.Factory, nil
	}
	chainID := params.ChainID
	if chainID == 0 && uc.config.Network != nil {
		chainID = uc.config.Network.ChainID
	}
	if chainID == 0 {
		return common.Address{}, fmt.Errorf("cannot pick a factory: pass --factory or --chain-id, or set chain_id on the network")
	}
	info, err := uc.registry.Lookup(chainID)
	if err != nil {
		return common.Address{}, err
	}
	return info.Factory, nil
}

package usecase

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// ChainEntry is one registry entry.
type ChainEntry struct {
	ChainID uint64
	Info    *domain.DeterministicDeploymentInfo
}

// ListChains lists the chains the factory can be bootstrapped on.
type ListChains struct {
	registry DeploymentInfoRegistry
}

// NewListChains creates a new ListChains use case
func NewListChains(registry DeploymentInfoRegistry) *ListChains {
	return &ListChains{registry: registry}
}

// Run returns the registry entries ordered by chain id.
func (uc *ListChains) Run() []ChainEntry {
	entries := lo.MapToSlice(uc.registry.List(), func(id uint64, info *domain.DeterministicDeploymentInfo) ChainEntry {
		return ChainEntry{ChainID: id, Info: info}
	})
	slices.SortFunc(entries, func(a, b ChainEntry) int {
		return cmp.Compare(a.ChainID, b.ChainID)
	})
	return entries
}

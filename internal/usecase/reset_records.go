package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// ResetRecordsParams contains parameters for resetting the record store
type ResetRecordsParams struct {
	DryRun bool // If true, only collect items without executing reset
}

// ResetRecordsResult contains the result of resetting the record store
type ResetRecordsResult struct {
	ChainID uint64
	Removed []string
}

// ResetRecords deletes the record set of the target chain.
type ResetRecords struct {
	config  *config.RuntimeConfig
	gateway ChainGateway
	records RecordStore
	log     *slog.Logger
}

// NewResetRecords creates a new ResetRecords use case
func NewResetRecords(cfg *config.RuntimeConfig, gateway ChainGateway, records RecordStore, log *slog.Logger) *ResetRecords {
	return &ResetRecords{
		config:  cfg,
		gateway: gateway,
		records: records,
		log:     log.With("component", "ResetRecords"),
	}
}

// Run executes the reset records use case
func (uc *ResetRecords) Run(ctx context.Context, params ResetRecordsParams) (*ResetRecordsResult, error) {
	chainID, err := resolveChainID(ctx, uc.config, uc.gateway)
	if err != nil {
		return nil, err
	}

	records, err := uc.records.List(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	result := &ResetRecordsResult{ChainID: chainID, Removed: lo.Keys(records)}
	slices.Sort(result.Removed)

	if len(result.Removed) == 0 || params.DryRun {
		return result, nil
	}

	unlock, err := uc.records.Lock(ctx, chainID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock() }()

	if err := uc.records.Reset(ctx, chainID); err != nil {
		return nil, fmt.Errorf("failed to reset records: %w", err)
	}
	uc.log.Info("records reset", "chain", chainID, "count", len(result.Removed))
	return result, nil
}

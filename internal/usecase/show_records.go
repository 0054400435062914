package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// NamedRecord pairs a record with its contract name.
type NamedRecord struct {
	Name   string
	Record *domain.DeploymentRecord
}

// ShowRecordsResult contains the record set of one chain
type ShowRecordsResult struct {
	ChainID uint64
	Records []NamedRecord
}

// ShowRecords lists the persisted records of the target chain.
type ShowRecords struct {
	config  *config.RuntimeConfig
	gateway ChainGateway
	records RecordStore
}

// NewShowRecords creates a new ShowRecords use case
func NewShowRecords(cfg *config.RuntimeConfig, gateway ChainGateway, records RecordStore) *ShowRecords {
	return &ShowRecords{config: cfg, gateway: gateway, records: records}
}

// Run returns the records sorted by contract name.
func (uc *ShowRecords) Run(ctx context.Context) (*ShowRecordsResult, error) {
	chainID, err := resolveChainID(ctx, uc.config, uc.gateway)
	if err != nil {
		return nil, err
	}

	records, err := uc.records.List(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	names := lo.Keys(records)
	slices.Sort(names)
	return &ShowRecordsResult{
		ChainID: chainID,
		Records: lo.Map(names, func(name string, _ int) NamedRecord {
			return NamedRecord{Name: name, Record: records[name]}
		}),
	}, nil
}

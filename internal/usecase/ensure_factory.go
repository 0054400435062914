package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// EnsureFactoryResult describes the factory on the target chain.
type EnsureFactoryResult struct {
	ChainID      uint64
	Factory      common.Address
	Bootstrapped bool
	FundingTx    *common.Hash
	DeployTx     *common.Hash
}

// TransactionCount returns the number of transactions the bootstrap sent.
func (r *EnsureFactoryResult) TransactionCount() int {
	n := 0
	if r.FundingTx != nil {
		n++
	}
	if r.DeployTx != nil {
		n++
	}
	return n
}

// EnsureFactory makes sure the singleton factory exists on the target chain.
type EnsureFactory struct {
	config   *config.RuntimeConfig
	gateway  ChainGateway
	registry DeploymentInfoRegistry
	progress ProgressSink
	log      *slog.Logger
}

// NewEnsureFactory creates a new EnsureFactory use case
func NewEnsureFactory(
	cfg *config.RuntimeConfig,
	gateway ChainGateway,
	registry DeploymentInfoRegistry,
	progress ProgressSink,
	log *slog.Logger,
) *EnsureFactory {
	return &EnsureFactory{
		config:   cfg,
		gateway:  gateway,
		registry: registry,
		progress: progress,
		log:      log.With("component", "EnsureFactory"),
	}
}

// Run bootstraps the factory when its code is missing. It sends either no
// transaction or exactly two: the funding transfer to the bootstrap deployer
// and the pre-signed factory creation.
func (uc *EnsureFactory) Run(ctx context.Context) (*EnsureFactoryResult, error) {
	chainID, err := resolveChainID(ctx, uc.config, uc.gateway)
	if err != nil {
		return nil, err
	}

	info, err := uc.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	result := &EnsureFactoryResult{ChainID: chainID, Factory: info.Factory}

	code, err := uc.gateway.CodeAt(ctx, info.Factory)
	if err != nil {
		return nil, fmt.Errorf("failed to get factory code: %w", err)
	}
	if len(code) > 0 {
		uc.log.Debug("factory already deployed", "chain", chainID, "factory", info.Factory)
		return result, nil
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "factory",
		Message: fmt.Sprintf("Funding factory deployer %s", info.Deployer.Hex()),
		Spinner: true,
	})
	fundingTx, err := uc.gateway.Send(ctx, domain.TxRequest{To: info.Deployer, Value: info.Funding})
	if err != nil {
		return nil, fmt.Errorf("failed to fund factory deployer: %w", err)
	}
	result.FundingTx = &fundingTx
	if _, err := uc.waitSucceeded(ctx, fundingTx, "funding transfer"); err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "factory",
		Message: fmt.Sprintf("Deploying factory %s", info.Factory.Hex()),
		Spinner: true,
	})
	deployTx, err := uc.gateway.SendRaw(ctx, info.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to submit factory deployment: %w", err)
	}
	result.DeployTx = &deployTx
	receipt, err := uc.waitSucceeded(ctx, deployTx, "factory deployment")
	if err != nil {
		return nil, err
	}

	actual := common.Address{}
	switch {
	case receipt.ContractAddress != nil:
		actual = *receipt.ContractAddress
	case uc.gateway.Dialect() == domain.DialectEVM:
		// The bootstrap is the deployer's first transaction
		actual = crypto.CreateAddress(info.Deployer, 0)
	}
	if actual != info.Factory {
		return nil, domain.FactoryAddressMismatchError{Expected: info.Factory, Actual: actual}
	}

	result.Bootstrapped = true
	uc.log.Info("factory deployed", "chain", chainID, "factory", info.Factory, "tx", deployTx)
	uc.progress.Info(fmt.Sprintf("Factory deployed at %s", info.Factory.Hex()))
	return result, nil
}

func (uc *EnsureFactory) waitSucceeded(ctx context.Context, hash common.Hash, what string) (*domain.Receipt, error) {
	receipt, err := uc.gateway.WaitReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s %s: %w", what, hash.Hex(), err)
	}
	if !receipt.Succeeded() {
		return nil, fmt.Errorf("%w: %s %s reverted", domain.ErrRejectedTransaction, what, hash.Hex())
	}
	return receipt, nil
}

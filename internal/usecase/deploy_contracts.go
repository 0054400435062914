package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bytecode"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
)

// DeployContractsParams contains parameters for a deployment run
type DeployContractsParams struct {
	// Contracts overrides the configured contract list when non-empty
	Contracts []string
}

// ContractOutcome is what happened to one contract during a run.
type ContractOutcome struct {
	Name            string
	Status          domain.ContractStatus
	Address         common.Address
	TransactionHash *common.Hash
	GasUsed         uint64
	Warning         *domain.ReuseMismatchWarning
}

// DeployContractsResult contains the result of a deployment run
type DeployContractsResult struct {
	ChainID  uint64
	Factory  *EnsureFactoryResult
	Records  map[string]*domain.DeploymentRecord
	Outcomes []ContractOutcome
	Warnings []domain.ReuseMismatchWarning
}

// DeployCount returns the number of contracts deployed by this run.
func (r *DeployContractsResult) DeployCount() int {
	return lo.CountBy(r.Outcomes, func(o ContractOutcome) bool { return o.Status == domain.ContractDeployed })
}

// DeployContracts places every configured contract at its deterministic
// address, reusing contracts that are already there.
type DeployContracts struct {
	config    *config.RuntimeConfig
	gateway   ChainGateway
	artifacts ArtifactSource
	records   RecordStore
	factory   *EnsureFactory
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContracts creates a new DeployContracts use case
func NewDeployContracts(
	cfg *config.RuntimeConfig,
	gateway ChainGateway,
	artifacts ArtifactSource,
	records RecordStore,
	factory *EnsureFactory,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContracts {
	return &DeployContracts{
		config:    cfg,
		gateway:   gateway,
		artifacts: artifacts,
		records:   records,
		factory:   factory,
		progress:  progress,
		log:       log.With("component", "DeployContracts"),
	}
}

// Run executes the deployment. Contracts are processed one at a time in the
// given order and any failure other than a reuse mismatch aborts the run.
// Records persisted before the failure are kept, so a later run resumes.
func (uc *DeployContracts) Run(ctx context.Context, params DeployContractsParams) (*DeployContractsResult, error) {
	names := params.Contracts
	if len(names) == 0 {
		names = uc.config.Project.Contracts
	}
	names = lo.Uniq(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no contracts to deploy, list them in [project] contracts or pass them as arguments")
	}

	chainID, err := resolveChainID(ctx, uc.config, uc.gateway)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.records.Lock(ctx, chainID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			uc.log.Warn("failed to release run lock", "chain", chainID, "error", err)
		}
	}()

	factory, err := uc.factory.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure factory: %w", err)
	}

	scheme, err := create2.ForDialect(uc.gateway.Dialect())
	if err != nil {
		return nil, err
	}

	result := &DeployContractsResult{
		ChainID: chainID,
		Factory: factory,
		Records: make(map[string]*domain.DeploymentRecord, len(names)),
	}

	for i, name := range names {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "deploy",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("Processing %s", name),
			Spinner: true,
		})

		outcome, record, err := uc.deployOne(ctx, chainID, scheme, factory.Factory, name)
		if err != nil {
			return result, err
		}
		result.Records[name] = record
		result.Outcomes = append(result.Outcomes, *outcome)
		if outcome.Warning != nil {
			result.Warnings = append(result.Warnings, *outcome.Warning)
		}
	}

	return result, nil
}

func (uc *DeployContracts) deployOne(
	ctx context.Context,
	chainID uint64,
	scheme create2.Scheme,
	factory common.Address,
	name string,
) (*ContractOutcome, *domain.DeploymentRecord, error) {
	artifact, err := uc.artifacts.GetArtifact(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	// No contract currently takes constructor arguments
	var constructorInput []byte
	target, err := create2.Target(scheme, factory, artifact, uc.config.Project.Salt, constructorInput)
	if err != nil {
		return nil, nil, err
	}
	addr := target.ExpectedAddress
	expected := scheme.ExpectedCode(artifact)

	code, err := uc.gateway.CodeAt(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get code of %s at %s: %w", name, addr.Hex(), err)
	}

	if len(code) > 0 {
		return uc.reuse(ctx, chainID, scheme, factory, name, artifact, target, expected, code)
	}

	data, factoryDeps, err := scheme.DeployCall(uc.config.Project.Salt, target.BytecodeHash, artifact.Bytecode, constructorInput)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode deployment of %s: %w", name, err)
	}

	uc.log.Info("deploying contract", "contract", name, "address", addr)
	txHash, err := uc.gateway.Send(ctx, domain.TxRequest{To: factory, Data: data, FactoryDeps: factoryDeps})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send deployment of %s: %w", name, err)
	}
	receipt, err := uc.gateway.WaitReceipt(ctx, txHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wait for deployment of %s: %w", name, err)
	}
	if !receipt.Succeeded() {
		return nil, nil, fmt.Errorf("%w: deployment of %s reverted in %s", domain.ErrRejectedTransaction, name, txHash.Hex())
	}
	if receipt.ContractAddress != nil && *receipt.ContractAddress != addr {
		return nil, nil, domain.DeploymentVerificationError{
			Contract: name,
			Address:  addr,
			Reason:   fmt.Sprintf("receipt reports contract created at %s", receipt.ContractAddress.Hex()),
		}
	}

	code, err = uc.gateway.CodeAt(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get code of %s at %s: %w", name, addr.Hex(), err)
	}
	if len(code) == 0 {
		return nil, nil, domain.DeploymentVerificationError{Contract: name, Address: addr, Reason: "no code at expected address"}
	}
	report := bytecode.Verify(expected, code, artifact.ImmutableReferences)
	if !report.Matched() {
		return nil, nil, domain.DeploymentVerificationError{
			Contract: name,
			Address:  addr,
			Reason:   fmt.Sprintf("on-chain code hash %s does not match artifact hash %s", report.ActualHash.Hex(), report.ExpectedHash.Hex()),
		}
	}

	record := uc.newRecord(scheme, factory, artifact, target)
	record.TransactionHash = &txHash
	record.Receipt = receipt
	if err := uc.records.Save(ctx, chainID, name, record); err != nil {
		return nil, nil, fmt.Errorf("failed to save record of %s: %w", name, err)
	}

	uc.progress.Info(fmt.Sprintf("Deployed %s at %s", name, addr.Hex()))
	return &ContractOutcome{
		Name:            name,
		Status:          domain.ContractDeployed,
		Address:         addr,
		TransactionHash: &txHash,
		GasUsed:         receipt.GasUsed,
	}, record, nil
}

// reuse records a contract whose address is already occupied. Code that
// does not match the artifact is reported, never redeployed.
func (uc *DeployContracts) reuse(
	ctx context.Context,
	chainID uint64,
	scheme create2.Scheme,
	factory common.Address,
	name string,
	artifact *domain.ContractArtifact,
	target *domain.DeploymentTarget,
	expected, code []byte,
) (*ContractOutcome, *domain.DeploymentRecord, error) {
	addr := target.ExpectedAddress
	outcome := &ContractOutcome{Name: name, Status: domain.ContractReused, Address: addr}

	report := bytecode.Verify(expected, code, artifact.ImmutableReferences)
	if !report.Matched() {
		outcome.Warning = &domain.ReuseMismatchWarning{
			Contract:     name,
			Address:      addr,
			ExpectedHash: report.ExpectedHash,
			ActualHash:   report.ActualHash,
		}
		uc.log.Warn("reused contract code does not match artifact",
			"contract", name, "address", addr,
			"expected", report.ExpectedHash, "actual", report.ActualHash)
	}

	existing, err := uc.records.Get(ctx, chainID, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read record of %s: %w", name, err)
	}

	record := uc.newRecord(scheme, factory, artifact, target)
	record.Reused = true
	if existing != nil && existing.Address == addr {
		record.TransactionHash = existing.TransactionHash
		record.Receipt = existing.Receipt
		record.Reused = existing.Reused
		outcome.TransactionHash = existing.TransactionHash
	}
	if err := uc.records.Save(ctx, chainID, name, record); err != nil {
		return nil, nil, fmt.Errorf("failed to save record of %s: %w", name, err)
	}

	uc.progress.Info(fmt.Sprintf("Reusing %s at %s", name, addr.Hex()))
	return outcome, record, nil
}

func (uc *DeployContracts) newRecord(
	scheme create2.Scheme,
	factory common.Address,
	artifact *domain.ContractArtifact,
	target *domain.DeploymentTarget,
) *domain.DeploymentRecord {
	return &domain.DeploymentRecord{
		Address:             target.ExpectedAddress,
		ABI:                 artifact.ABI,
		Bytecode:            artifact.Bytecode,
		DeployedBytecode:    scheme.ExpectedCode(artifact),
		ImmutableReferences: artifact.ImmutableReferences,
		Dialect:             scheme.Dialect(),
		Factory:             factory,
		Salt:                uc.config.Project.Salt.Hex(),
		BytecodeHash:        target.BytecodeHash,
		Metadata:            artifact.Metadata,
		UpdatedAt:           time.Now().UTC(),
	}
}

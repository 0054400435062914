package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bytecode"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
)

// VerificationStatus is the verdict for one recorded contract.
type VerificationStatus string

const (
	VerificationMatch       VerificationStatus = "match"
	VerificationMismatch    VerificationStatus = "mismatch"
	VerificationNoCode      VerificationStatus = "no-code"
	VerificationNotDeployed VerificationStatus = "not-deployed"
)

// ExpectedCodeSource names where the reference code came from.
type ExpectedCodeSource string

const (
	SourceArtifact ExpectedCodeSource = "artifact"
	SourceRecord   ExpectedCodeSource = "record"
	SourceCompiler ExpectedCodeSource = "compiler"
)

// VerifyContractsParams contains parameters for verification
type VerifyContractsParams struct {
	// Contracts limits verification to these names, default is every record
	Contracts []string
	// Recompile rebuilds the runtime code from the recorded compiler metadata
	Recompile bool
}

// ContractVerification is the verification result of one contract
type ContractVerification struct {
	Name         string
	Address      common.Address
	Status       VerificationStatus
	Source       ExpectedCodeSource
	Reused       bool
	ExpectedHash common.Hash
	ActualHash   common.Hash
	// ArtifactDrift is set when recompiling produced code that differs from
	// the artifact on disk.
	ArtifactDrift bool
}

// VerifyContractsResult contains the result of verification
type VerifyContractsResult struct {
	ChainID uint64
	Results []ContractVerification
}

// AllMatched reports whether every verified contract matched.
func (r *VerifyContractsResult) AllMatched() bool {
	return lo.EveryBy(r.Results, func(v ContractVerification) bool { return v.Status == VerificationMatch })
}

// VerifyContracts re-checks recorded deployments against live chain code.
type VerifyContracts struct {
	config    *config.RuntimeConfig
	gateway   ChainGateway
	artifacts ArtifactSource
	records   RecordStore
	compiler  Compiler
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyContracts creates a new VerifyContracts use case
func NewVerifyContracts(
	cfg *config.RuntimeConfig,
	gateway ChainGateway,
	artifacts ArtifactSource,
	records RecordStore,
	compiler Compiler,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyContracts {
	return &VerifyContracts{
		config:    cfg,
		gateway:   gateway,
		artifacts: artifacts,
		records:   records,
		compiler:  compiler,
		progress:  progress,
		log:       log.With("component", "VerifyContracts"),
	}
}

// Run verifies the selected contracts. Mismatches are reported in the
// result, only infrastructure failures are returned as errors.
func (uc *VerifyContracts) Run(ctx context.Context, params VerifyContractsParams) (*VerifyContractsResult, error) {
	chainID, err := resolveChainID(ctx, uc.config, uc.gateway)
	if err != nil {
		return nil, err
	}
	if params.Recompile && uc.gateway.Dialect() != domain.DialectEVM {
		return nil, fmt.Errorf("%w: recompiling is only supported on evm chains", domain.ErrUnsupportedDialect)
	}

	records, err := uc.records.List(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	names := lo.Uniq(params.Contracts)
	if len(names) == 0 {
		names = lo.Keys(records)
		slices.Sort(names)
	}

	result := &VerifyContractsResult{ChainID: chainID}
	for i, name := range names {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "verify",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("Verifying %s", name),
			Spinner: true,
		})

		record, ok := records[name]
		if !ok {
			result.Results = append(result.Results, ContractVerification{Name: name, Status: VerificationNotDeployed})
			continue
		}

		v, err := uc.verifyOne(ctx, name, record, params.Recompile)
		if err != nil {
			return nil, err
		}
		if v.Status != VerificationMatch {
			uc.log.Warn("contract verification failed", "contract", name, "address", record.Address, "status", v.Status)
		}
		result.Results = append(result.Results, *v)
	}

	return result, nil
}

func (uc *VerifyContracts) verifyOne(ctx context.Context, name string, record *domain.DeploymentRecord, recompile bool) (*ContractVerification, error) {
	v := &ContractVerification{Name: name, Address: record.Address, Reused: record.Reused}

	expected, refs, source, err := uc.expectedCode(ctx, name, record)
	if err != nil {
		return nil, err
	}
	v.Source = source

	if recompile {
		compiled, err := uc.compiler.CompileDeployed(ctx, record.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to recompile %s: %w", name, err)
		}
		drift := bytecode.Verify(expected, compiled.DeployedBytecode, compiled.ImmutableReferences)
		v.ArtifactDrift = !drift.Matched()
		if v.ArtifactDrift {
			uc.log.Warn("compiler output differs from artifact", "contract", name,
				"artifact", drift.ExpectedHash, "compiled", drift.ActualHash)
		}
		expected, refs, v.Source = compiled.DeployedBytecode, compiled.ImmutableReferences, SourceCompiler
	}

	code, err := uc.gateway.CodeAt(ctx, record.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get code of %s at %s: %w", name, record.Address.Hex(), err)
	}

	report := bytecode.Verify(expected, code, refs)
	v.ExpectedHash, v.ActualHash = report.ExpectedHash, report.ActualHash
	switch {
	case len(code) == 0:
		v.Status = VerificationNoCode
	case report.Matched():
		v.Status = VerificationMatch
	default:
		v.Status = VerificationMismatch
	}
	return v, nil
}

// expectedCode prefers the current artifact and falls back to the code
// captured in the record when the artifact is gone.
func (uc *VerifyContracts) expectedCode(ctx context.Context, name string, record *domain.DeploymentRecord) ([]byte, []domain.ImmutableReference, ExpectedCodeSource, error) {
	artifact, err := uc.artifacts.GetArtifact(ctx, name)
	switch {
	case err == nil:
		scheme, err := create2.ForDialect(uc.gateway.Dialect())
		if err != nil {
			return nil, nil, "", err
		}
		return scheme.ExpectedCode(artifact), artifact.ImmutableReferences, SourceArtifact, nil
	case errors.Is(err, domain.ErrContractNotFound):
		uc.log.Debug("artifact not found, using recorded code", "contract", name)
		return record.DeployedBytecode, record.ImmutableReferences, SourceRecord, nil
	default:
		return nil, nil, "", fmt.Errorf("failed to load artifact: %w", err)
	}
}

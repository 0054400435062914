package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// ChainGateway is the connection to the target chain. Every call blocks
// until the node answered; transient failures are retried inside the
// gateway and surface as domain.ErrTransientNetwork once retries run out.
type ChainGateway interface {
	ChainID(ctx context.Context) (uint64, error)
	Dialect() domain.Dialect
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
	// SendRaw submits an already signed transaction.
	SendRaw(ctx context.Context, raw []byte) (common.Hash, error)
	// Send signs req with the configured account and submits it.
	Send(ctx context.Context, req domain.TxRequest) (common.Hash, error)
	// WaitReceipt polls until the transaction is included.
	WaitReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error)
}

// ArtifactSource provides access to compiled contracts
type ArtifactSource interface {
	GetArtifact(ctx context.Context, name string) (*domain.ContractArtifact, error)
	ListContracts(ctx context.Context) ([]string, error)
}

// RecordStore persists one record set per chain.
type RecordStore interface {
	// Get returns nil without error when no record exists.
	Get(ctx context.Context, chainID uint64, name string) (*domain.DeploymentRecord, error)
	List(ctx context.Context, chainID uint64) (map[string]*domain.DeploymentRecord, error)
	Save(ctx context.Context, chainID uint64, name string, record *domain.DeploymentRecord) error
	Reset(ctx context.Context, chainID uint64) error
	// Lock takes the exclusive run lock of a chain's record set.
	Lock(ctx context.Context, chainID uint64) (unlock func() error, err error)
}

// DeploymentInfoRegistry resolves how to bootstrap the factory on a chain.
type DeploymentInfoRegistry interface {
	// Lookup fails with domain.UnsupportedChainError on a miss.
	Lookup(chainID uint64) (*domain.DeterministicDeploymentInfo, error)
	List() map[uint64]*domain.DeterministicDeploymentInfo
}

// CompiledCode is the runtime section produced by a compiler run.
type CompiledCode struct {
	DeployedBytecode    []byte
	ImmutableReferences []domain.ImmutableReference
}

// Compiler recompiles a contract from its persisted metadata.
type Compiler interface {
	CompileDeployed(ctx context.Context, metadata domain.CompilerMetadata) (*CompiledCode, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

const testChainID = 31337

var (
	testFactory  = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")
	testDeployer = common.HexToAddress("0x3fAB184622Dc19b6109349B94811493BF2a45362")
	factoryCode  = common.FromHex("0x7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe03601600081602082378035828234f58015156039578182fd5b8082525050506014600cf3")
	bootstrapTx  = common.FromHex("0xf8a58085174876e800830186a08080b853604580600e600039806000f350fe")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(dialect domain.Dialect, contracts ...string) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Network: &config.Network{
			Name:    "test",
			ChainID: testChainID,
			Dialect: dialect,
		},
		Project: config.ProjectConfig{Contracts: contracts},
	}
}

// fakeChain is an in-memory chain. Calls to the factory create code at the
// address the dialect's scheme derives, mirroring the on-chain factory.
type fakeChain struct {
	mu      sync.Mutex
	dialect domain.Dialect
	code    map[common.Address][]byte
	runtime map[common.Hash][]byte

	sent     []domain.TxRequest
	raw      [][]byte
	receipts map[common.Hash]*domain.Receipt
	nonce    uint64

	// Test hooks
	revertFactoryCalls bool
	receiptAddress     *common.Address
	bootstrapAddress   *common.Address
	corruptDeploy      bool
	codeAtErr          error
}

func newFakeChain(dialect domain.Dialect) *fakeChain {
	return &fakeChain{
		dialect:  dialect,
		code:     make(map[common.Address][]byte),
		runtime:  make(map[common.Hash][]byte),
		receipts: make(map[common.Hash]*domain.Receipt),
	}
}

// registerRuntime tells the fake which runtime code an init code produces.
func (c *fakeChain) registerRuntime(art *domain.ContractArtifact) {
	c.runtime[crypto.Keccak256Hash(art.Bytecode)] = art.DeployedBytecode
}

func (c *fakeChain) setCode(addr common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[addr] = code
}

func (c *fakeChain) txCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent) + len(c.raw)
}

func (c *fakeChain) factoryCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, req := range c.sent {
		if req.To == testFactory {
			n++
		}
	}
	return n
}

func (c *fakeChain) ChainID(context.Context) (uint64, error) { return testChainID, nil }

func (c *fakeChain) Dialect() domain.Dialect { return c.dialect }

func (c *fakeChain) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.codeAtErr != nil {
		return nil, c.codeAtErr
	}
	return c.code[addr], nil
}

func (c *fakeChain) SendRaw(_ context.Context, raw []byte) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = append(c.raw, raw)
	hash := crypto.Keccak256Hash(raw)

	created := testFactory
	if c.bootstrapAddress != nil {
		created = *c.bootstrapAddress
	}
	c.code[created] = factoryCode
	c.receipts[hash] = &domain.Receipt{
		TransactionHash: hash,
		Status:          domain.ReceiptStatusSuccessful,
		ContractAddress: &created,
	}
	return hash, nil
}

func (c *fakeChain) Send(_ context.Context, req domain.TxRequest) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, req)
	c.nonce++
	hash := crypto.Keccak256Hash(req.To.Bytes(), new(big.Int).SetUint64(c.nonce).Bytes(), req.Data)
	receipt := &domain.Receipt{TransactionHash: hash, Status: domain.ReceiptStatusSuccessful, GasUsed: 21000}
	c.receipts[hash] = receipt

	if req.To != testFactory || len(c.code[testFactory]) == 0 {
		return hash, nil
	}
	if c.revertFactoryCalls {
		receipt.Status = domain.ReceiptStatusFailed
		return hash, nil
	}

	addr, code, err := c.create(req)
	if err != nil {
		return common.Hash{}, err
	}
	if c.corruptDeploy {
		code = append([]byte{0xfe}, code...)
	}
	c.code[addr] = code
	receipt.GasUsed = 100000
	if c.dialect == domain.DialectZkSync {
		receipt.ContractAddress = &addr
	}
	if c.receiptAddress != nil {
		receipt.ContractAddress = c.receiptAddress
	}
	return hash, nil
}

func (c *fakeChain) create(req domain.TxRequest) (common.Address, []byte, error) {
	switch c.dialect {
	case domain.DialectZkSync:
		if len(req.Data) < 4+64 || len(req.FactoryDeps) != 1 {
			return common.Address{}, nil, errors.New("malformed deployContract call")
		}
		var salt domain.Salt
		copy(salt[:], req.Data[4:36])
		hash := common.BytesToHash(req.Data[36:68])
		return create2.ZkSync{}.Address(testFactory, salt, hash, nil), req.FactoryDeps[0], nil
	default:
		if len(req.Data) < 32 {
			return common.Address{}, nil, errors.New("malformed factory call")
		}
		var salt [32]byte
		copy(salt[:], req.Data[:32])
		initCode := req.Data[32:]
		runtime, ok := c.runtime[crypto.Keccak256Hash(initCode)]
		if !ok {
			return common.Address{}, nil, fmt.Errorf("unknown init code")
		}
		return crypto.CreateAddress2(testFactory, salt, crypto.Keccak256(initCode)), runtime, nil
	}
}

func (c *fakeChain) WaitReceipt(_ context.Context, hash common.Hash) (*domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("unknown transaction %s", hash.Hex())
	}
	return receipt, nil
}

// fakeArtifacts serves artifacts from memory
type fakeArtifacts map[string]*domain.ContractArtifact

func (f fakeArtifacts) GetArtifact(_ context.Context, name string) (*domain.ContractArtifact, error) {
	art, ok := f[name]
	if !ok {
		return nil, domain.ContractNotFoundError{Name: name}
	}
	return art, nil
}

func (f fakeArtifacts) ListContracts(context.Context) ([]string, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names, nil
}

// memRecords is an in-memory RecordStore
type memRecords struct {
	mu      sync.Mutex
	sets    map[uint64]map[string]*domain.DeploymentRecord
	locked  map[uint64]bool
	saves   int
	lockErr error
}

func newMemRecords() *memRecords {
	return &memRecords{
		sets:   make(map[uint64]map[string]*domain.DeploymentRecord),
		locked: make(map[uint64]bool),
	}
}

func (m *memRecords) Get(_ context.Context, chainID uint64, name string) (*domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[chainID][name], nil
}

func (m *memRecords) List(_ context.Context, chainID uint64) (map[string]*domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*domain.DeploymentRecord, len(m.sets[chainID]))
	for k, v := range m.sets[chainID] {
		out[k] = v
	}
	return out, nil
}

func (m *memRecords) Save(_ context.Context, chainID uint64, name string, record *domain.DeploymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[chainID] == nil {
		m.sets[chainID] = make(map[string]*domain.DeploymentRecord)
	}
	m.sets[chainID][name] = record
	m.saves++
	return nil
}

func (m *memRecords) Reset(_ context.Context, chainID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, chainID)
	return nil
}

func (m *memRecords) Lock(_ context.Context, chainID uint64) (func() error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	if m.locked[chainID] {
		return nil, fmt.Errorf("chain %d is locked", chainID)
	}
	m.locked[chainID] = true
	return func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.locked, chainID)
		return nil
	}, nil
}

// fakeRegistry is a fixed DeploymentInfoRegistry
type fakeRegistry map[uint64]*domain.DeterministicDeploymentInfo

func (r fakeRegistry) Lookup(chainID uint64) (*domain.DeterministicDeploymentInfo, error) {
	info, ok := r[chainID]
	if !ok {
		return nil, domain.UnsupportedChainError{ChainID: chainID}
	}
	return info, nil
}

func (r fakeRegistry) List() map[uint64]*domain.DeterministicDeploymentInfo { return r }

func testRegistry() fakeRegistry {
	return fakeRegistry{
		testChainID: {
			Factory:           testFactory,
			Deployer:          testDeployer,
			Funding:           big.NewInt(10_000_000_000_000_000),
			SignedTransaction: bootstrapTx,
		},
	}
}

// MockCompiler is a mock implementation of Compiler
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) CompileDeployed(ctx context.Context, metadata domain.CompilerMetadata) (*usecase.CompiledCode, error) {
	args := m.Called(ctx, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CompiledCode), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(string) {}

// evmArtifact builds an artifact whose runtime code embeds name. When
// immutable is set the runtime reserves a 32 byte immutable slot.
func evmArtifact(name string, immutable bool) *domain.ContractArtifact {
	runtime := append([]byte{0x60, 0x80, 0x60, 0x40, 0x52}, []byte(name)...)
	var refs []domain.ImmutableReference
	if immutable {
		refs = []domain.ImmutableReference{{Offset: len(runtime), Length: 32}}
		runtime = append(runtime, make([]byte, 32)...)
	}
	runtime = append(runtime, 0x00)
	initCode := append([]byte{0x60, 0x0b, 0x38, 0x03, 0x80, 0x60, 0x0b, 0x60, 0x00, 0x39, 0xf3}, runtime...)
	return &domain.ContractArtifact{
		Name:                name,
		Bytecode:            initCode,
		DeployedBytecode:    runtime,
		ImmutableReferences: refs,
		ABI:                 []byte(`[]`),
		Metadata:            domain.CompilerMetadata{Language: "Solidity", CompilerVersion: "0.8.24", SourcePath: "src/" + name + ".sol"},
	}
}

// zkArtifact builds a single word artifact for the zkSync dialect.
func zkArtifact(name string) *domain.ContractArtifact {
	code := make([]byte, 32)
	copy(code, name)
	return &domain.ContractArtifact{Name: name, Bytecode: code, DeployedBytecode: code, ABI: []byte(`[]`)}
}

func artifactsFor(arts ...*domain.ContractArtifact) fakeArtifacts {
	out := make(fakeArtifacts, len(arts))
	for _, a := range arts {
		out[a.Name] = a
	}
	return out
}

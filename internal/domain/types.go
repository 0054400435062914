package domain

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Dialect identifies the virtual machine flavour of a chain. It selects the
// bytecode hashing scheme, the factory calling convention and the artifact
// directory.
type Dialect string

const (
	DialectEVM    Dialect = "evm"
	DialectZkSync Dialect = "zksync"
)

// Valid reports whether the dialect is one of the supported chain families.
func (d Dialect) Valid() bool {
	return d == DialectEVM || d == DialectZkSync
}

// Salt is the CREATE2 salt shared by every contract of a deployment run.
type Salt [32]byte

// ZeroSalt is the salt used unless the project overrides it.
var ZeroSalt Salt

func (s Salt) Hex() string {
	return hexutil.Encode(s[:])
}

// ImmutableReference marks a region of deployed code that the constructor
// fills with an environment specific value.
type ImmutableReference struct {
	Offset int `json:"start"`
	Length int `json:"length"`
}

// CompilerMetadata is the subset of solc metadata needed to rebuild the
// standard JSON compiler input for an artifact.
type CompilerMetadata struct {
	Language        string             `json:"language"`
	CompilerVersion string             `json:"compilerVersion"`
	EVMVersion      string             `json:"evmVersion,omitempty"`
	SourcePath      string             `json:"sourcePath"`
	Settings        json.RawMessage    `json:"settings,omitempty"`
	Sources         map[string]*Source `json:"sources,omitempty"`
}

// Source holds the content of one compiler input file, keyed by path in
// CompilerMetadata.Sources.
type Source struct {
	Keccak256 string `json:"keccak256,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ContractArtifact is the compiled output of a single contract.
type ContractArtifact struct {
	Name                string
	Bytecode            []byte
	DeployedBytecode    []byte
	ImmutableReferences []ImmutableReference
	ABI                 json.RawMessage
	Metadata            CompilerMetadata
}

// DeterministicDeploymentInfo describes how to bring the singleton factory
// into existence on a chain.
type DeterministicDeploymentInfo struct {
	Factory           common.Address `json:"factory"`
	Deployer          common.Address `json:"deployer"`
	Funding           *big.Int       `json:"funding"`
	SignedTransaction hexutil.Bytes  `json:"signedTransaction"`
}

// DeploymentTarget is the expected location of a contract.
type DeploymentTarget struct {
	ContractName    string
	ExpectedAddress common.Address
	BytecodeHash    common.Hash
	ConstructorArgs []byte
}

// TxRequest is a transaction the chain gateway signs with the configured
// signer and submits.
type TxRequest struct {
	To          common.Address
	Value       *big.Int
	Data        []byte
	FactoryDeps [][]byte
}

// Receipt is the dialect independent view of a transaction receipt.
type Receipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	Status          uint64          `json:"status"`
	BlockNumber     uint64          `json:"blockNumber"`
	GasUsed         uint64          `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
}

const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptStatusSuccessful
}

// DeploymentRecord is the persisted result of deploying or confirming one
// contract on one chain.
type DeploymentRecord struct {
	Address          common.Address  `json:"address"`
	ABI              json.RawMessage `json:"abi"`
	TransactionHash  *common.Hash    `json:"transactionHash,omitempty"`
	Receipt          *Receipt        `json:"receipt,omitempty"`
	Bytecode         hexutil.Bytes   `json:"bytecode"`
	DeployedBytecode hexutil.Bytes   `json:"deployedBytecode"`

	ImmutableReferences []ImmutableReference `json:"immutableReferences,omitempty"`

	Dialect      Dialect          `json:"dialect"`
	Factory      common.Address   `json:"factory"`
	Salt         string           `json:"salt"`
	BytecodeHash common.Hash      `json:"bytecodeHash"`
	Metadata     CompilerMetadata `json:"metadata"`
	Reused       bool             `json:"reused,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ContractStatus is the outcome of processing one contract in a run.
type ContractStatus string

const (
	ContractDeployed ContractStatus = "deployed"
	ContractReused   ContractStatus = "reused"
)

package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedChain is returned when no deterministic deployment info is registered for a chain
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrFactoryAddressMismatch is returned when the bootstrap transaction created the factory elsewhere
	ErrFactoryAddressMismatch = errors.New("factory address mismatch")

	// ErrDeploymentVerificationFailed is returned when freshly deployed code disagrees with its artifact
	ErrDeploymentVerificationFailed = errors.New("deployment verification failed")

	// ErrTransientNetwork is returned for RPC failures that may succeed on retry
	ErrTransientNetwork = errors.New("transient network error")

	// ErrRejectedTransaction is returned when the chain refuses or reverts a transaction
	ErrRejectedTransaction = errors.New("rejected transaction")

	// ErrInvalidEncoding is returned for inputs of the wrong byte length or shape
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrContractNotFound is returned when an artifact can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrUnsupportedDialect is returned for operations a chain dialect can't perform
	ErrUnsupportedDialect = errors.New("unsupported dialect")
)

type UnsupportedChainError struct {
	ChainID uint64
}

func (e UnsupportedChainError) Error() string {
	return fmt.Sprintf("no deterministic deployment info registered for chain %d", e.ChainID)
}

func (e UnsupportedChainError) Unwrap() error { return ErrUnsupportedChain }

type FactoryAddressMismatchError struct {
	Expected common.Address
	Actual   common.Address
}

func (e FactoryAddressMismatchError) Error() string {
	return fmt.Sprintf("bootstrap transaction created factory at %s, expected %s", e.Actual.Hex(), e.Expected.Hex())
}

func (e FactoryAddressMismatchError) Unwrap() error { return ErrFactoryAddressMismatch }

type DeploymentVerificationError struct {
	Contract string
	Address  common.Address
	Reason   string
}

func (e DeploymentVerificationError) Error() string {
	return fmt.Sprintf("verification of %s at %s failed: %s", e.Contract, e.Address.Hex(), e.Reason)
}

func (e DeploymentVerificationError) Unwrap() error { return ErrDeploymentVerificationFailed }

type ContractNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e ContractNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no artifact found for contract %s", e.Name)
	}
	return fmt.Sprintf("no artifact found for contract %s, did you mean: %s", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e ContractNotFoundError) Unwrap() error { return ErrContractNotFound }

// ReuseMismatchWarning reports an already deployed contract whose code does
// not match its artifact. It is collected in run results, never returned as a
// failure: the code at the address can't be replaced.
type ReuseMismatchWarning struct {
	Contract     string
	Address      common.Address
	ExpectedHash common.Hash
	ActualHash   common.Hash
}

func (w ReuseMismatchWarning) Error() string {
	return fmt.Sprintf("code of reused %s at %s does not match artifact (expected %s, got %s)",
		w.Contract, w.Address.Hex(), w.ExpectedHash.Hex(), w.ActualHash.Hex())
}

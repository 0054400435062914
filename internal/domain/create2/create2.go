// Package create2 computes content-addressed contract locations.
//
// A Scheme captures everything that differs between the supported chain
// families: how bytecode is hashed, how the final address is derived and how a
// deployment call to the singleton factory is encoded. Derivation is pure and
// performs no I/O.
package create2

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// Scheme is the dialect specific content addressing formula.
type Scheme interface {
	// Dialect returns the chain family the scheme belongs to.
	Dialect() domain.Dialect

	// BytecodeHash hashes the init code together with its constructor input.
	BytecodeHash(bytecode, constructorInput []byte) (common.Hash, error)

	// Address derives the deployment address from an already computed bytecode hash.
	Address(factory common.Address, salt domain.Salt, bytecodeHash common.Hash, constructorInput []byte) common.Address

	// DeployCall encodes the factory call deploying bytecode. FactoryDeps holds
	// code that has to travel alongside the transaction.
	DeployCall(salt domain.Salt, bytecodeHash common.Hash, bytecode, constructorInput []byte) (data []byte, factoryDeps [][]byte, err error)

	// ExpectedCode returns the code the chain should report at the derived
	// address once the artifact is deployed.
	ExpectedCode(artifact *domain.ContractArtifact) []byte
}

// ForDialect returns the scheme of a chain family.
func ForDialect(d domain.Dialect) (Scheme, error) {
	switch d {
	case domain.DialectEVM, "":
		return EVM{}, nil
	case domain.DialectZkSync:
		return ZkSync{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDialect, d)
	}
}

// Derive computes the address a contract will occupy when deployed through
// factory with the given salt.
func Derive(scheme Scheme, factory common.Address, bytecode []byte, salt domain.Salt, constructorInput []byte) (common.Address, error) {
	hash, err := scheme.BytecodeHash(bytecode, constructorInput)
	if err != nil {
		return common.Address{}, err
	}
	return scheme.Address(factory, salt, hash, constructorInput), nil
}

// Target computes the full deployment target of an artifact.
func Target(scheme Scheme, factory common.Address, artifact *domain.ContractArtifact, salt domain.Salt, constructorInput []byte) (*domain.DeploymentTarget, error) {
	hash, err := scheme.BytecodeHash(artifact.Bytecode, constructorInput)
	if err != nil {
		return nil, fmt.Errorf("failed to hash bytecode of %s: %w", artifact.Name, err)
	}
	return &domain.DeploymentTarget{
		ContractName:    artifact.Name,
		ExpectedAddress: scheme.Address(factory, salt, hash, constructorInput),
		BytecodeHash:    hash,
		ConstructorArgs: constructorInput,
	}, nil
}

// ParseSalt decodes a 32 byte hex salt.
func ParseSalt(s string) (domain.Salt, error) {
	var salt domain.Salt
	if s == "" {
		return salt, nil
	}
	b := common.FromHex(s)
	if len(b) != len(salt) {
		return salt, fmt.Errorf("%w: salt must be 32 bytes, got %d", domain.ErrInvalidEncoding, len(b))
	}
	copy(salt[:], b)
	return salt, nil
}

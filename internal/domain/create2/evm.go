package create2

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// EVM is the EIP-1014 scheme used by Ethereum and its direct descendants.
// The factory is the deterministic deployment proxy, which takes the salt
// followed by the init code as raw call data.
type EVM struct{}

func (EVM) Dialect() domain.Dialect { return domain.DialectEVM }

func (EVM) BytecodeHash(bytecode, constructorInput []byte) (common.Hash, error) {
	if len(bytecode) == 0 {
		return common.Hash{}, fmt.Errorf("%w: empty init code", domain.ErrInvalidEncoding)
	}
	return crypto.Keccak256Hash(bytecode, constructorInput), nil
}

func (EVM) Address(factory common.Address, salt domain.Salt, bytecodeHash common.Hash, _ []byte) common.Address {
	return crypto.CreateAddress2(factory, salt, bytecodeHash.Bytes())
}

func (EVM) DeployCall(salt domain.Salt, _ common.Hash, bytecode, constructorInput []byte) ([]byte, [][]byte, error) {
	if len(bytecode) == 0 {
		return nil, nil, fmt.Errorf("%w: empty init code", domain.ErrInvalidEncoding)
	}
	data := make([]byte, 0, len(salt)+len(bytecode)+len(constructorInput))
	data = append(data, salt[:]...)
	data = append(data, bytecode...)
	data = append(data, constructorInput...)
	return data, nil, nil
}

func (EVM) ExpectedCode(artifact *domain.ContractArtifact) []byte {
	return artifact.DeployedBytecode
}

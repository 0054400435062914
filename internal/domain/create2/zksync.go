package create2

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bindings"
)

const (
	zkWordSize      = 32
	zkMaxWords      = 1<<16 - 1
	zkHashVersion   = 0x01
	zkCreate2Marker = "zksyncCreate2"
)

var zkCreate2Prefix = crypto.Keccak256([]byte(zkCreate2Marker))

// ZkSync is the content addressing scheme of zkSync style virtual machines.
// Bytecode is identified by a versioned sha256 hash and the factory only
// receives that hash. The code itself travels as a factory dependency.
type ZkSync struct{}

func (ZkSync) Dialect() domain.Dialect { return domain.DialectZkSync }

// BytecodeHash returns the versioned hash of bytecode. The constructor input
// is not part of the hash on this dialect.
func (ZkSync) BytecodeHash(bytecode, _ []byte) (common.Hash, error) {
	if len(bytecode) == 0 || len(bytecode)%zkWordSize != 0 {
		return common.Hash{}, fmt.Errorf("%w: bytecode length %d is not a multiple of %d", domain.ErrInvalidEncoding, len(bytecode), zkWordSize)
	}
	words := len(bytecode) / zkWordSize
	if words > zkMaxWords {
		return common.Hash{}, fmt.Errorf("%w: bytecode has %d words, limit is %d", domain.ErrInvalidEncoding, words, zkMaxWords)
	}
	if words%2 == 0 {
		return common.Hash{}, fmt.Errorf("%w: bytecode word count %d must be odd", domain.ErrInvalidEncoding, words)
	}

	sum := sha256.Sum256(bytecode)
	var h common.Hash
	copy(h[:], sum[:])
	h[0] = zkHashVersion
	h[1] = 0
	binary.BigEndian.PutUint16(h[2:4], uint16(words))
	return h, nil
}

func (ZkSync) Address(factory common.Address, salt domain.Salt, bytecodeHash common.Hash, constructorInput []byte) common.Address {
	digest := crypto.Keccak256(
		zkCreate2Prefix,
		common.LeftPadBytes(factory.Bytes(), 32),
		salt[:],
		bytecodeHash.Bytes(),
		crypto.Keccak256(constructorInput),
	)
	return common.BytesToAddress(digest[12:])
}

func (ZkSync) DeployCall(salt domain.Salt, bytecodeHash common.Hash, bytecode, constructorInput []byte) ([]byte, [][]byte, error) {
	if constructorInput == nil {
		constructorInput = []byte{}
	}
	data, err := bindings.NewSingletonFactory().TryPackDeployContract(salt, bytecodeHash, constructorInput)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pack deployContract: %w", err)
	}
	return data, [][]byte{bytecode}, nil
}

// ExpectedCode is the bytecode itself: the VM stores code exactly as it was
// published, without a separate runtime section.
func (ZkSync) ExpectedCode(artifact *domain.ContractArtifact) []byte {
	return artifact.Bytecode
}

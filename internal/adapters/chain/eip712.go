package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
)

const (
	eip712TxType         = 0x71
	defaultGasPerPubdata = 50_000
)

var transactionTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	"Transaction": {
		{Name: "txType", Type: "uint256"},
		{Name: "from", Type: "uint256"},
		{Name: "to", Type: "uint256"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "gasPerPubdataByteLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymaster", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "factoryDeps", Type: "bytes32[]"},
		{Name: "paymasterInput", Type: "bytes"},
	},
}

// eip712Tx is a zkSync type 0x71 transaction. It is signed as EIP-712 typed
// data and may carry factory dependencies.
type eip712Tx struct {
	ChainID              *big.Int
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	GasPerPubdata        uint64
	From                 common.Address
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	FactoryDeps          [][]byte
}

func (tx *eip712Tx) typedData() (apitypes.TypedData, error) {
	deps := make([]interface{}, len(tx.FactoryDeps))
	for i, dep := range tx.FactoryDeps {
		hash, err := create2.ZkSync{}.BytecodeHash(dep, nil)
		if err != nil {
			return apitypes.TypedData{}, fmt.Errorf("factory dependency %d: %w", i, err)
		}
		deps[i] = hash.Bytes()
	}

	return apitypes.TypedData{
		Types:       transactionTypes,
		PrimaryType: "Transaction",
		Domain: apitypes.TypedDataDomain{
			Name:    "zkSync",
			Version: "2",
			ChainId: (*math.HexOrDecimal256)(tx.ChainID),
		},
		Message: apitypes.TypedDataMessage{
			"txType":                 big.NewInt(eip712TxType),
			"from":                   new(big.Int).SetBytes(tx.From.Bytes()),
			"to":                     new(big.Int).SetBytes(tx.To.Bytes()),
			"gasLimit":               new(big.Int).SetUint64(tx.GasLimit),
			"gasPerPubdataByteLimit": new(big.Int).SetUint64(tx.GasPerPubdata),
			"maxFeePerGas":           tx.MaxFeePerGas,
			"maxPriorityFeePerGas":   tx.MaxPriorityFeePerGas,
			"paymaster":              new(big.Int),
			"nonce":                  new(big.Int).SetUint64(tx.Nonce),
			"value":                  tx.Value,
			"data":                   tx.Data,
			"factoryDeps":            deps,
			"paymasterInput":         []byte{},
		},
	}, nil
}

// signingHash returns the EIP-712 digest the sender signs.
func (tx *eip712Tx) signingHash() ([]byte, error) {
	typed, err := tx.typedData()
	if err != nil {
		return nil, err
	}
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed transaction: %w", err)
	}
	return digest, nil
}

// encode serializes the signed transaction. The signature travels as the
// custom signature field; the v, r, s slots carry the chain id and two
// empty strings.
func (tx *eip712Tx) encode(sig []byte) ([]byte, error) {
	deps := tx.FactoryDeps
	if deps == nil {
		deps = [][]byte{}
	}
	payload, err := rlp.EncodeToBytes([]interface{}{
		tx.Nonce,
		tx.MaxPriorityFeePerGas,
		tx.MaxFeePerGas,
		tx.GasLimit,
		tx.To,
		tx.Value,
		tx.Data,
		tx.ChainID,
		[]byte{},
		[]byte{},
		tx.ChainID,
		tx.From,
		tx.GasPerPubdata,
		deps,
		sig,
		[]interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode typed transaction: %w", err)
	}
	return append([]byte{eip712TxType}, payload...), nil
}

// hash is the transaction hash nodes report for a signed 0x71 transaction.
func (tx *eip712Tx) hash(digest, sig []byte) common.Hash {
	return crypto.Keccak256Hash(digest, crypto.Keccak256(sig))
}

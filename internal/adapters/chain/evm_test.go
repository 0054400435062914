package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/anchor/internal/adapters/signer"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testFactory = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")
)

func testSigner(t *testing.T) *signer.Signer {
	t.Helper()
	s, err := signer.FromHex(testKey)
	require.NoError(t, err)
	return s
}

func newTestGateway(t *testing.T, node *fakeNode, s *signer.Signer) *EVMGateway {
	g := NewEVMGateway(node.network(domain.DialectEVM), s, discardLogger())
	g.retry.interval = time.Millisecond
	t.Cleanup(g.Close)
	return g
}

func decodeRawParam(t *testing.T, params []json.RawMessage) []byte {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(params[0], &s))
	raw, err := hexutil.Decode(s)
	require.NoError(t, err)
	return raw
}

func TestEVMGatewayConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("dials lazily and once", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		g := newTestGateway(t, node, nil)
		assert.Equal(t, 0, node.callCount("eth_chainId"))

		id, err := g.ChainID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), id)

		_, err = g.ChainID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, node.callCount("eth_chainId"))
	})

	t.Run("rejects a node serving another chain", func(t *testing.T) {
		node := newFakeNode(t, "0x1")
		network := node.network(domain.DialectEVM)
		network.ChainID = 31337
		g := NewEVMGateway(network, nil, discardLogger())

		_, err := g.CodeAt(ctx, testFactory)
		assert.ErrorIs(t, err, ErrChainIDMismatch)
		assert.Contains(t, err.Error(), "node reports 1")
	})

	t.Run("matching pinned chain id", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		network := node.network(domain.DialectEVM)
		network.ChainID = 31337
		g := NewEVMGateway(network, nil, discardLogger())
		t.Cleanup(g.Close)

		id, err := g.ChainID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), id)
	})
}

func TestEVMGatewayCodeAt(t *testing.T) {
	node := newFakeNode(t, "0x7a69")
	failures := 2
	node.handle("eth_getCode", func(params []json.RawMessage) (any, *rpcError) {
		if failures > 0 {
			failures--
			return nil, &rpcError{Code: rpcCodeLimitExceeded, Message: "limit exceeded"}
		}
		var addr common.Address
		if err := json.Unmarshal(params[0], &addr); err != nil || addr != testFactory {
			return "0x", nil
		}
		return "0x6001600055", nil
	})

	network := node.network(domain.DialectEVM)
	network.MaxRetries = 3
	g := NewEVMGateway(network, nil, discardLogger())
	g.retry.interval = time.Millisecond
	t.Cleanup(g.Close)

	code, err := g.CodeAt(context.Background(), testFactory)
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x6001600055"), code)
	assert.Equal(t, 3, node.callCount("eth_getCode"))
}

func TestEVMGatewaySendRaw(t *testing.T) {
	ctx := context.Background()
	raw := common.FromHex("0xf8a58085174876e800830186a08080")

	t.Run("returns node hash", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		want := common.HexToHash("0x1234")
		node.result("eth_sendRawTransaction", want.Hex())
		g := newTestGateway(t, node, nil)

		hash, err := g.SendRaw(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, want, hash)
	})

	t.Run("already known is success", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.handle("eth_sendRawTransaction", func([]json.RawMessage) (any, *rpcError) {
			return nil, &rpcError{Code: -32000, Message: "already known"}
		})
		g := newTestGateway(t, node, nil)

		hash, err := g.SendRaw(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, crypto.Keccak256Hash(raw), hash)
	})

	t.Run("rejection", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.handle("eth_sendRawTransaction", func([]json.RawMessage) (any, *rpcError) {
			return nil, &rpcError{Code: -32000, Message: "insufficient funds for gas * price + value"}
		})
		g := newTestGateway(t, node, nil)

		_, err := g.SendRaw(ctx, raw)
		assert.ErrorIs(t, err, domain.ErrRejectedTransaction)
		assert.Equal(t, 1, node.callCount("eth_sendRawTransaction"))
	})
}

func TestEVMGatewaySend(t *testing.T) {
	ctx := context.Background()
	data := common.FromHex("0xdeadbeef")

	t.Run("dynamic fee transaction", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.result("eth_getTransactionCount", "0x2")
		node.result("eth_estimateGas", "0x5208")
		node.result("eth_maxPriorityFeePerGas", "0x1")
		node.result("eth_getBlockByNumber", headerJSON("0x3b9aca00"))

		var sent *types.Transaction
		node.handle("eth_sendRawTransaction", func(params []json.RawMessage) (any, *rpcError) {
			sent = new(types.Transaction)
			if err := sent.UnmarshalBinary(decodeRawParam(t, params)); err != nil {
				return nil, &rpcError{Code: -32602, Message: err.Error()}
			}
			return sent.Hash().Hex(), nil
		})

		g := newTestGateway(t, node, testSigner(t))
		hash, err := g.Send(ctx, domain.TxRequest{To: testFactory, Data: data})
		require.NoError(t, err)
		require.NotNil(t, sent)

		assert.Equal(t, sent.Hash(), hash)
		assert.Equal(t, uint8(types.DynamicFeeTxType), sent.Type())
		assert.Equal(t, uint64(2), sent.Nonce())
		assert.Equal(t, uint64(21000+21000/5), sent.Gas())
		assert.Equal(t, big.NewInt(1), sent.GasTipCap())
		assert.Equal(t, big.NewInt(2_000_000_001), sent.GasFeeCap())
		assert.Equal(t, testFactory, *sent.To())
		assert.Equal(t, data, sent.Data())

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), sent)
		require.NoError(t, err)
		assert.Equal(t, testAccount, sender)
	})

	t.Run("legacy transaction with pinned gas limit", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.result("eth_getTransactionCount", "0x0")
		node.result("eth_gasPrice", "0x64")
		node.result("eth_getBlockByNumber", headerJSON(""))

		var sent *types.Transaction
		node.handle("eth_sendRawTransaction", func(params []json.RawMessage) (any, *rpcError) {
			sent = new(types.Transaction)
			if err := sent.UnmarshalBinary(decodeRawParam(t, params)); err != nil {
				return nil, &rpcError{Code: -32602, Message: err.Error()}
			}
			return sent.Hash().Hex(), nil
		})

		network := node.network(domain.DialectEVM)
		network.GasLimit = 500_000
		g := NewEVMGateway(network, testSigner(t), discardLogger())
		t.Cleanup(g.Close)

		_, err := g.Send(ctx, domain.TxRequest{To: testFactory, Value: big.NewInt(5)})
		require.NoError(t, err)
		require.NotNil(t, sent)

		assert.Equal(t, uint8(types.LegacyTxType), sent.Type())
		assert.Equal(t, uint64(500_000), sent.Gas())
		assert.Equal(t, big.NewInt(100), sent.GasPrice())
		assert.Equal(t, big.NewInt(5), sent.Value())
		assert.Equal(t, 0, node.callCount("eth_estimateGas"))
	})

	t.Run("no signer", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		g := newTestGateway(t, node, nil)
		_, err := g.Send(ctx, domain.TxRequest{To: testFactory})
		assert.ErrorIs(t, err, signer.ErrNoAccount)
	})

	t.Run("factory dependencies", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		g := newTestGateway(t, node, testSigner(t))
		_, err := g.Send(ctx, domain.TxRequest{To: testFactory, FactoryDeps: [][]byte{{0x1}}})
		assert.ErrorIs(t, err, domain.ErrUnsupportedDialect)
	})
}

func TestEVMGatewayWaitReceipt(t *testing.T) {
	ctx := context.Background()
	txHash := common.HexToHash("0x11")

	t.Run("polls until included", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		polls := 0
		node.handle("eth_getTransactionReceipt", func([]json.RawMessage) (any, *rpcError) {
			polls++
			if polls < 3 {
				return nil, nil
			}
			return receiptJSON(txHash.Hex(), testFactory.Hex(), nil), nil
		})
		g := newTestGateway(t, node, nil)

		receipt, err := g.WaitReceipt(ctx, txHash)
		require.NoError(t, err)
		assert.Equal(t, 3, polls)
		assert.Equal(t, txHash, receipt.TransactionHash)
		assert.True(t, receipt.Succeeded())
		assert.Equal(t, uint64(16), receipt.BlockNumber)
		assert.Equal(t, uint64(21000), receipt.GasUsed)
		require.NotNil(t, receipt.ContractAddress)
		assert.Equal(t, testFactory, *receipt.ContractAddress)
	})

	t.Run("call receipts carry no contract address", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.result("eth_getTransactionReceipt", receiptJSON(txHash.Hex(), "", nil))
		g := newTestGateway(t, node, nil)

		receipt, err := g.WaitReceipt(ctx, txHash)
		require.NoError(t, err)
		assert.Nil(t, receipt.ContractAddress)
	})

	t.Run("times out", func(t *testing.T) {
		node := newFakeNode(t, "0x7a69")
		node.result("eth_getTransactionReceipt", nil)
		network := node.network(domain.DialectEVM)
		network.ReceiptTimeout = 50 * time.Millisecond
		g := NewEVMGateway(network, nil, discardLogger())
		t.Cleanup(g.Close)

		_, err := g.WaitReceipt(ctx, txHash)
		assert.ErrorIs(t, err, domain.ErrTransientNetwork)
		assert.Contains(t, err.Error(), "no receipt")
	})
}

func TestProvideGateway(t *testing.T) {
	log := discardLogger()

	gw, err := ProvideGateway(&config.RuntimeConfig{}, nil, log)
	require.NoError(t, err)
	_, err = gw.ChainID(context.Background())
	assert.ErrorIs(t, err, usecase.ErrNetworkRequired)

	gw, err = ProvideGateway(&config.RuntimeConfig{Network: &config.Network{Name: "a"}}, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &EVMGateway{}, gw)

	gw, err = ProvideGateway(&config.RuntimeConfig{Network: &config.Network{Name: "b", Dialect: domain.DialectZkSync}}, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &ZkSyncGateway{}, gw)
	assert.Equal(t, domain.DialectZkSync, gw.Dialect())

	_, err = ProvideGateway(&config.RuntimeConfig{Network: &config.Network{Name: "c", Dialect: "tvm"}}, nil, log)
	assert.ErrorIs(t, err, domain.ErrUnsupportedDialect)
}

func headerJSON(baseFee string) map[string]any {
	zeroHash := common.Hash{}.Hex()
	h := map[string]any{
		"parentHash":       zeroHash,
		"sha3Uncles":       types.EmptyUncleHash.Hex(),
		"miner":            common.Address{}.Hex(),
		"stateRoot":        zeroHash,
		"transactionsRoot": types.EmptyTxsHash.Hex(),
		"receiptsRoot":     types.EmptyReceiptsHash.Hex(),
		"logsBloom":        emptyBloom,
		"difficulty":       "0x0",
		"number":           "0x10",
		"gasLimit":         "0x1c9c380",
		"gasUsed":          "0x0",
		"timestamp":        "0x6553f100",
		"extraData":        "0x",
		"mixHash":          zeroHash,
		"nonce":            "0x0000000000000000",
	}
	if baseFee != "" {
		h["baseFeePerGas"] = baseFee
	}
	return h
}

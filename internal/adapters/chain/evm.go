// Package chain implements the chain gateway over JSON-RPC for the supported
// chain dialects.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/anchor/internal/adapters/signer"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultReceiptTimeout = 5 * time.Minute
	defaultRetryInterval  = 500 * time.Millisecond
)

// ErrChainIDMismatch is returned when the node serves a different chain than
// the network configuration pins.
var ErrChainIDMismatch = errors.New("chain ID mismatch")

// EVMGateway talks to an Ethereum compatible node. The connection is opened
// on first use.
type EVMGateway struct {
	network *config.Network
	signer  *signer.Signer
	log     *slog.Logger
	retry   retryPolicy

	mu      sync.Mutex
	rpc     *rpc.Client
	client  *ethclient.Client
	chainID uint64
}

// NewEVMGateway creates a gateway for network. s may be nil for read only use.
func NewEVMGateway(network *config.Network, s *signer.Signer, log *slog.Logger) *EVMGateway {
	n := *network
	if n.PollInterval <= 0 {
		n.PollInterval = defaultPollInterval
	}
	if n.ReceiptTimeout <= 0 {
		n.ReceiptTimeout = defaultReceiptTimeout
	}
	return &EVMGateway{
		network: &n,
		signer:  s,
		log:     log.With("component", "ChainGateway", "network", n.Name),
		retry:   retryPolicy{maxRetries: n.MaxRetries, interval: defaultRetryInterval},
	}
}

// ProvideGateway creates the gateway matching the selected network's dialect
// for Wire dependency injection
func ProvideGateway(cfg *config.RuntimeConfig, s *signer.Signer, log *slog.Logger) (usecase.ChainGateway, error) {
	if cfg.Network == nil {
		return disconnected{}, nil
	}
	switch cfg.Network.Dialect {
	case domain.DialectEVM, "":
		return NewEVMGateway(cfg.Network, s, log), nil
	case domain.DialectZkSync:
		return NewZkSyncGateway(cfg.Network, s, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDialect, cfg.Network.Dialect)
	}
}

func (g *EVMGateway) connect(ctx context.Context) (*ethclient.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	rpcClient, err := rpc.DialContext(ctx, g.network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	client := ethclient.NewClient(rpcClient)

	id, err := withRetry(ctx, g.retry, g.log, "eth_chainId", client.ChainID)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if g.network.ChainID != 0 && id.Uint64() != g.network.ChainID {
		rpcClient.Close()
		return nil, fmt.Errorf("%w: network %s is configured for chain %d, node reports %d",
			ErrChainIDMismatch, g.network.Name, g.network.ChainID, id.Uint64())
	}

	g.rpc = rpcClient
	g.client = client
	g.chainID = id.Uint64()
	g.log.Debug("connected", "chainId", g.chainID)
	return client, nil
}

// Close releases the connection, if one was opened.
func (g *EVMGateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rpc != nil {
		g.rpc.Close()
		g.rpc, g.client = nil, nil
	}
}

func (g *EVMGateway) ChainID(ctx context.Context) (uint64, error) {
	if _, err := g.connect(ctx); err != nil {
		return 0, err
	}
	return g.chainID, nil
}

func (g *EVMGateway) Dialect() domain.Dialect {
	return domain.DialectEVM
}

func (g *EVMGateway) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, g.retry, g.log, "eth_getCode", func(ctx context.Context) ([]byte, error) {
		return client.CodeAt(ctx, addr, nil)
	})
}

func (g *EVMGateway) SendRaw(ctx context.Context, raw []byte) (common.Hash, error) {
	if _, err := g.connect(ctx); err != nil {
		return common.Hash{}, err
	}
	return g.submit(ctx, raw, crypto.Keccak256Hash(raw))
}

// submit broadcasts raw. localHash is returned when the node already knows
// the transaction.
func (g *EVMGateway) submit(ctx context.Context, raw []byte, localHash common.Hash) (common.Hash, error) {
	hash, err := withRetry(ctx, g.retry, g.log, "eth_sendRawTransaction", func(ctx context.Context) (common.Hash, error) {
		var hash common.Hash
		err := g.rpc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw))
		return hash, err
	})
	if err != nil {
		if isAlreadyKnown(err) {
			g.log.Debug("transaction already known", "hash", localHash.Hex())
			return localHash, nil
		}
		return common.Hash{}, err
	}
	return hash, nil
}

func (g *EVMGateway) Send(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	if len(req.FactoryDeps) > 0 {
		return common.Hash{}, fmt.Errorf("%w: factory dependencies need the zksync dialect", domain.ErrUnsupportedDialect)
	}
	if g.signer == nil {
		return common.Hash{}, signer.ErrNoAccount
	}
	client, err := g.connect(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	from := g.signer.Address()
	value := valueOrZero(req.Value)
	nonce, err := withRetry(ctx, g.retry, g.log, "eth_getTransactionCount", func(ctx context.Context) (uint64, error) {
		return client.PendingNonceAt(ctx, from)
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	gas, err := g.gasLimit(ctx, client, ethereum.CallMsg{From: from, To: &req.To, Value: value, Data: req.Data})
	if err != nil {
		return common.Hash{}, err
	}
	header, err := withRetry(ctx, g.retry, g.log, "eth_getBlockByNumber", func(ctx context.Context) (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get latest header: %w", err)
	}

	chainID := new(big.Int).SetUint64(g.chainID)
	var txData types.TxData
	if header.BaseFee != nil {
		tip, err := withRetry(ctx, g.retry, g.log, "eth_maxPriorityFeePerGas", client.SuggestGasTipCap)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to get gas tip: %w", err)
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))
		txData = &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &req.To,
			Value:     value,
			Data:      req.Data,
		}
	} else {
		price, err := withRetry(ctx, g.retry, g.log, "eth_gasPrice", client.SuggestGasPrice)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
		}
		txData = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       &req.To,
			Value:    value,
			Data:     req.Data,
		}
	}

	signed, err := g.signer.SignTx(types.NewTx(txData), chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode transaction: %w", err)
	}
	g.log.Debug("sending transaction", "to", req.To.Hex(), "nonce", nonce, "gas", gas)
	return g.submit(ctx, raw, signed.Hash())
}

// gasLimit returns the configured limit or the node's estimate with 20%
// headroom.
func (g *EVMGateway) gasLimit(ctx context.Context, client *ethclient.Client, msg ethereum.CallMsg) (uint64, error) {
	if g.network.GasLimit > 0 {
		return g.network.GasLimit, nil
	}
	gas, err := withRetry(ctx, g.retry, g.log, "eth_estimateGas", func(ctx context.Context) (uint64, error) {
		return client.EstimateGas(ctx, msg)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return gas + gas/5, nil
}

func (g *EVMGateway) WaitReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	receipt, err := g.waitReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	return toReceipt(receipt), nil
}

// waitReceipt polls for the receipt of hash every poll interval until the
// receipt timeout elapses.
func (g *EVMGateway) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.network.ReceiptTimeout)
	defer cancel()
	ticker := time.NewTicker(g.network.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(waitCtx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, ethereum.NotFound), waitCtx.Err() != nil:
		default:
			err = classify("eth_getTransactionReceipt", err)
			if !errors.Is(err, domain.ErrTransientNetwork) {
				return nil, err
			}
			g.log.Debug("receipt poll failed", "hash", hash.Hex(), "error", err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: no receipt for %s after %s", domain.ErrTransientNetwork, hash.Hex(), g.network.ReceiptTimeout)
		case <-ticker.C:
		}
	}
}

func toReceipt(r *types.Receipt) *domain.Receipt {
	out := &domain.Receipt{
		TransactionHash: r.TxHash,
		Status:          r.Status,
		GasUsed:         r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	if r.ContractAddress != (common.Address{}) {
		addr := r.ContractAddress
		out.ContractAddress = &addr
	}
	return out
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// disconnected is the gateway used when no network is selected.
type disconnected struct{}

func (disconnected) ChainID(context.Context) (uint64, error) { return 0, usecase.ErrNetworkRequired }
func (disconnected) Dialect() domain.Dialect                 { return domain.DialectEVM }
func (disconnected) CodeAt(context.Context, common.Address) ([]byte, error) {
	return nil, usecase.ErrNetworkRequired
}
func (disconnected) SendRaw(context.Context, []byte) (common.Hash, error) {
	return common.Hash{}, usecase.ErrNetworkRequired
}
func (disconnected) Send(context.Context, domain.TxRequest) (common.Hash, error) {
	return common.Hash{}, usecase.ErrNetworkRequired
}
func (disconnected) WaitReceipt(context.Context, common.Hash) (*domain.Receipt, error) {
	return nil, usecase.ErrNetworkRequired
}

var (
	_ usecase.ChainGateway = (*EVMGateway)(nil)
	_ usecase.ChainGateway = disconnected{}
)

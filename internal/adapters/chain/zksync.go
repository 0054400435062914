package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"
	"github.com/trebuchet-org/anchor/internal/adapters/signer"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bindings"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// ZkSyncGateway talks to a zkSync style node. Reads and raw sends behave like
// EVMGateway; signed sends use type 0x71 transactions so that init code can
// travel as factory dependencies.
type ZkSyncGateway struct {
	*EVMGateway
	deployer *bindings.ContractDeployer
}

func NewZkSyncGateway(network *config.Network, s *signer.Signer, log *slog.Logger) *ZkSyncGateway {
	return &ZkSyncGateway{
		EVMGateway: NewEVMGateway(network, s, log),
		deployer:   bindings.NewContractDeployer(),
	}
}

func (g *ZkSyncGateway) Dialect() domain.Dialect {
	return domain.DialectZkSync
}

func (g *ZkSyncGateway) Send(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	if g.signer == nil {
		return common.Hash{}, signer.ErrNoAccount
	}
	client, err := g.connect(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	from := g.signer.Address()
	nonce, err := withRetry(ctx, g.retry, g.log, "eth_getTransactionCount", func(ctx context.Context) (uint64, error) {
		return client.PendingNonceAt(ctx, from)
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	price, err := withRetry(ctx, g.retry, g.log, "eth_gasPrice", client.SuggestGasPrice)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	tx := &eip712Tx{
		ChainID:              new(big.Int).SetUint64(g.chainID),
		Nonce:                nonce,
		MaxPriorityFeePerGas: new(big.Int),
		MaxFeePerGas:         price,
		GasPerPubdata:        defaultGasPerPubdata,
		From:                 from,
		To:                   req.To,
		Value:                valueOrZero(req.Value),
		Data:                 req.Data,
		FactoryDeps:          req.FactoryDeps,
	}
	if tx.GasLimit, err = g.estimateGas(ctx, tx); err != nil {
		return common.Hash{}, err
	}

	digest, err := tx.signingHash()
	if err != nil {
		return common.Hash{}, err
	}
	sig, err := g.signer.SignDigest(digest)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	raw, err := tx.encode(sig)
	if err != nil {
		return common.Hash{}, err
	}
	g.log.Debug("sending typed transaction", "to", req.To.Hex(), "nonce", nonce, "gas", tx.GasLimit, "factoryDeps", len(req.FactoryDeps))
	return g.submit(ctx, raw, tx.hash(digest, sig))
}

type eip712Meta struct {
	GasPerPubdata hexutil.Uint64 `json:"gasPerPubdata"`
	// Dependencies are sent as arrays of byte values, not hex strings.
	FactoryDeps [][]int `json:"factoryDeps,omitempty"`
}

type zkCallRequest struct {
	Type       hexutil.Uint64 `json:"type"`
	From       common.Address `json:"from"`
	To         common.Address `json:"to"`
	Value      *hexutil.Big   `json:"value"`
	Data       hexutil.Bytes  `json:"data"`
	EIP712Meta *eip712Meta    `json:"eip712Meta"`
}

func newZkCallRequest(tx *eip712Tx) zkCallRequest {
	return zkCallRequest{
		Type:  eip712TxType,
		From:  tx.From,
		To:    tx.To,
		Value: (*hexutil.Big)(tx.Value),
		Data:  tx.Data,
		EIP712Meta: &eip712Meta{
			GasPerPubdata: hexutil.Uint64(tx.GasPerPubdata),
			FactoryDeps: lo.Map(tx.FactoryDeps, func(dep []byte, _ int) []int {
				return lo.Map(dep, func(b byte, _ int) int { return int(b) })
			}),
		},
	}
}

// estimateGas asks the node for a limit covering the factory dependencies'
// publication, unless the network pins one.
func (g *ZkSyncGateway) estimateGas(ctx context.Context, tx *eip712Tx) (uint64, error) {
	if g.network.GasLimit > 0 {
		return g.network.GasLimit, nil
	}
	req := newZkCallRequest(tx)
	gas, err := withRetry(ctx, g.retry, g.log, "eth_estimateGas", func(ctx context.Context) (hexutil.Uint64, error) {
		var gas hexutil.Uint64
		err := g.rpc.CallContext(ctx, &gas, "eth_estimateGas", req)
		return gas, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return uint64(gas) + uint64(gas)/5, nil
}

// WaitReceipt reports the created contract from the ContractDeployer's
// events. Creation receipts on this dialect leave contractAddress empty for
// calls into a factory.
func (g *ZkSyncGateway) WaitReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	receipt, err := g.waitReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	out := toReceipt(receipt)
	if deployed := g.deployer.DeployedAddresses(receipt.Logs); len(deployed) > 0 {
		addr := deployed[len(deployed)-1]
		out.ContractAddress = &addr
	}
	return out, nil
}

var _ usecase.ChainGateway = (*ZkSyncGateway)(nil)

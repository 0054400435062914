package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

func TestEnsureFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("factory present sends nothing", func(t *testing.T) {
		chain := newFakeChain(domain.DialectEVM)
		chain.setCode(testFactory, factoryCode)
		uc := usecase.NewEnsureFactory(testConfig(domain.DialectEVM), chain, testRegistry(), usecase.NopProgress{}, discardLogger())

		result, err := uc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, testFactory, result.Factory)
		assert.False(t, result.Bootstrapped)
		assert.Equal(t, 0, result.TransactionCount())
		assert.Equal(t, 0, chain.txCount())
	})

	t.Run("bootstraps missing factory", func(t *testing.T) {
		chain := newFakeChain(domain.DialectEVM)
		uc := usecase.NewEnsureFactory(testConfig(domain.DialectEVM), chain, testRegistry(), usecase.NopProgress{}, discardLogger())

		result, err := uc.Run(ctx)
		require.NoError(t, err)
		assert.True(t, result.Bootstrapped)
		require.NotNil(t, result.FundingTx)
		require.NotNil(t, result.DeployTx)
		assert.Equal(t, 2, chain.txCount())
		assert.Equal(t, testDeployer, chain.sent[0].To)

		code, err := chain.CodeAt(ctx, testFactory)
		require.NoError(t, err)
		assert.NotEmpty(t, code)

		// Running again is a no-op
		again, err := uc.Run(ctx)
		require.NoError(t, err)
		assert.False(t, again.Bootstrapped)
		assert.Equal(t, 2, chain.txCount())
	})

	t.Run("wrong bootstrap address is fatal", func(t *testing.T) {
		chain := newFakeChain(domain.DialectEVM)
		wrong := common.HexToAddress("0x1111111111111111111111111111111111111111")
		chain.bootstrapAddress = &wrong
		uc := usecase.NewEnsureFactory(testConfig(domain.DialectEVM), chain, testRegistry(), usecase.NopProgress{}, discardLogger())

		_, err := uc.Run(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFactoryAddressMismatch)

		var mismatch domain.FactoryAddressMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, testFactory, mismatch.Expected)
		assert.Equal(t, wrong, mismatch.Actual)
	})

	t.Run("unregistered chain", func(t *testing.T) {
		chain := newFakeChain(domain.DialectEVM)
		cfg := testConfig(domain.DialectEVM)
		cfg.Network.ChainID = 5
		uc := usecase.NewEnsureFactory(cfg, chain, testRegistry(), usecase.NopProgress{}, discardLogger())

		_, err := uc.Run(ctx)
		assert.ErrorIs(t, err, domain.ErrUnsupportedChain)
		assert.Equal(t, 0, chain.txCount())
	})

	t.Run("chain id from node when not configured", func(t *testing.T) {
		chain := newFakeChain(domain.DialectEVM)
		chain.setCode(testFactory, factoryCode)
		cfg := testConfig(domain.DialectEVM)
		cfg.Network.ChainID = 0
		uc := usecase.NewEnsureFactory(cfg, chain, testRegistry(), usecase.NopProgress{}, discardLogger())

		result, err := uc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(testChainID), result.ChainID)
	})

	t.Run("network required", func(t *testing.T) {
		cfg := testConfig(domain.DialectEVM)
		cfg.Network = nil
		uc := usecase.NewEnsureFactory(cfg, newFakeChain(domain.DialectEVM), testRegistry(), usecase.NopProgress{}, discardLogger())

		_, err := uc.Run(ctx)
		assert.ErrorIs(t, err, usecase.ErrNetworkRequired)
	})
}

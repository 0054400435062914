// Package signer turns the accounts setting into the key that signs every
// transaction of a run.
package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// ErrNoAccount is returned when a transaction has to be signed but no
// accounts are configured.
var ErrNoAccount = errors.New("no account configured")

// Signer holds one private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func New(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

// FromHex parses a hex private key with or without 0x prefix.
func FromHex(s string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return New(key), nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs tx for chainID with the latest signer the chain supports.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// SignDigest signs a 32 byte digest. The recovery id is returned as 27 or 28
// in the last byte.
func (s *Signer) SignDigest(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// ResolveAll returns every account described by the setting, in order.
func ResolveAll(accounts config.Accounts) ([]*Signer, error) {
	switch accounts.Kind {
	case config.AccountsUnset:
		return nil, nil
	case config.SinglePrivateKey, config.PrivateKeyList:
		signers := make([]*Signer, 0, len(accounts.PrivateKeys))
		for i, key := range accounts.PrivateKeys {
			s, err := FromHex(key)
			if err != nil {
				return nil, fmt.Errorf("account %d: %w", i, err)
			}
			signers = append(signers, s)
		}
		return signers, nil
	case config.Mnemonic:
		return fromMnemonic(accounts.Mnemonic)
	default:
		return nil, fmt.Errorf("unknown accounts kind %d", accounts.Kind)
	}
}

// Resolve returns the first configured account, which signs every
// transaction of a run. It returns nil without error when no accounts are
// configured; read only commands never sign.
func Resolve(accounts config.Accounts) (*Signer, error) {
	signers, err := ResolveAll(accounts)
	if err != nil {
		return nil, err
	}
	if len(signers) == 0 {
		if accounts.Kind != config.AccountsUnset {
			return nil, fmt.Errorf("%w: %s setting is empty", ErrNoAccount, accounts.Kind)
		}
		return nil, nil
	}
	return signers[0], nil
}

// ProvideSigner resolves the signer for Wire dependency injection
func ProvideSigner(cfg *config.RuntimeConfig, log *slog.Logger) (*Signer, error) {
	s, err := Resolve(cfg.Accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	if s != nil {
		log.Debug("resolved signer", "component", "Signer", "kind", cfg.Accounts.Kind.String(), "address", s.Address().Hex())
	}
	return s, nil
}

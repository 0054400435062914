package signer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

var validWordCounts = []int{12, 15, 18, 21, 24}

func fromMnemonic(m *config.MnemonicAccounts) ([]*Signer, error) {
	if m == nil {
		return nil, fmt.Errorf("mnemonic setting is empty")
	}
	seed, err := mnemonicSeed(m.Phrase, m.Passphrase)
	if err != nil {
		return nil, err
	}
	base, err := parsePath(m.Path)
	if err != nil {
		return nil, err
	}

	// Chain params only select the serialization version, never the keys
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}
	parent := master
	for _, index := range base {
		if parent, err = parent.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", base, err)
		}
	}

	signers := make([]*Signer, 0, m.Count)
	for i := 0; i < m.Count; i++ {
		index := m.InitialIndex + uint32(i)
		child, err := parent.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %d: %w", index, err)
		}
		priv, err := child.ECPrivKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %d: %w", index, err)
		}
		key, err := crypto.ToECDSA(priv.Serialize())
		if err != nil {
			return nil, err
		}
		signers = append(signers, New(key))
	}
	return signers, nil
}

// mnemonicSeed checks the phrase against the wordlist and its checksum and
// stretches it into a BIP-39 seed.
func mnemonicSeed(phrase, passphrase string) ([]byte, error) {
	words := strings.Fields(phrase)
	if !slices.Contains(validWordCounts, len(words)) {
		return nil, fmt.Errorf("mnemonic must have 12, 15, 18, 21 or 24 words, got %d", len(words))
	}
	normalized := norm.NFKD.String(strings.Join(words, " "))
	seed, err := bip39.NewSeedWithErrorChecking(normalized, norm.NFKD.String(passphrase))
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return seed, nil
}

// parsePath parses an absolute derivation path such as m/44'/60'/0'/0/. A
// trailing slash is allowed; account indexes are appended to the result.
func parsePath(path string) (accounts.DerivationPath, error) {
	path = strings.TrimSpace(path)
	if path != "m" && !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("invalid derivation path %q: must start with m", path)
	}
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == "m" {
		return accounts.DerivationPath{}, nil
	}
	parsed, err := accounts.ParseDerivationPath(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}
	return parsed, nil
}

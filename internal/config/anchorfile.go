package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// ConfigFileName is the project file marking the project root.
const ConfigFileName = "anchor.toml"

// AnchorFile is the raw anchor.toml structure
type AnchorFile struct {
	Accounts      *AccountsSetting         `toml:"accounts"`
	Project       ProjectSection           `toml:"project"`
	Networks      map[string]NetworkSection `toml:"networks"`
	Deterministic DeterministicSection     `toml:"deterministic"`
	Compiler      CompilerSection          `toml:"compiler"`
}

type ProjectSection struct {
	Artifacts   string   `toml:"artifacts"`
	ZkArtifacts string   `toml:"zk_artifacts"`
	Contracts   []string `toml:"contracts"`
	Salt        string   `toml:"salt"`
}

type NetworkSection struct {
	RPCURL         string           `toml:"rpc_url"`
	ChainID        uint64           `toml:"chain_id"`
	Dialect        string           `toml:"dialect"`
	PollInterval   string           `toml:"poll_interval"`
	ReceiptTimeout string           `toml:"receipt_timeout"`
	MaxRetries     *uint64          `toml:"max_retries"`
	GasLimit       uint64           `toml:"gas_limit"`
	Accounts       *AccountsSetting `toml:"accounts"`
}

type DeterministicSection struct {
	Registry string `toml:"registry"`
}

type CompilerSection struct {
	SolcDir   string `toml:"solc_dir"`
	CacheSize int    `toml:"cache_size"`
}

// AccountsSetting decodes the accounts key, which may be a single private
// key, an array of private keys or a mnemonic table.
type AccountsSetting struct {
	config.Accounts
}

// UnmarshalTOML implements toml.Unmarshaler.
func (a *AccountsSetting) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		a.Accounts = config.NewSinglePrivateKey(os.ExpandEnv(v))
	case []any:
		keys := make([]string, 0, len(v))
		for i, item := range v {
			key, ok := item.(string)
			if !ok {
				return fmt.Errorf("accounts[%d]: expected a private key string, got %T", i, item)
			}
			keys = append(keys, os.ExpandEnv(key))
		}
		if len(keys) == 0 {
			return fmt.Errorf("accounts: empty private key list")
		}
		a.Accounts = config.NewPrivateKeyList(keys)
	case map[string]any:
		m, err := decodeMnemonic(v)
		if err != nil {
			return err
		}
		a.Accounts = config.NewMnemonic(m)
	default:
		return fmt.Errorf("accounts: unsupported value of type %T", data)
	}
	return nil
}

func decodeMnemonic(v map[string]any) (config.MnemonicAccounts, error) {
	var m config.MnemonicAccounts
	for key, raw := range v {
		switch key {
		case "mnemonic", "path", "passphrase":
			s, ok := raw.(string)
			if !ok {
				return m, fmt.Errorf("accounts.%s: expected a string, got %T", key, raw)
			}
			s = os.ExpandEnv(s)
			switch key {
			case "mnemonic":
				m.Phrase = s
			case "path":
				m.Path = s
			default:
				m.Passphrase = s
			}
		case "count", "initial_index":
			n, ok := raw.(int64)
			if !ok || n < 0 {
				return m, fmt.Errorf("accounts.%s: expected a non-negative integer, got %v", key, raw)
			}
			if key == "count" {
				m.Count = int(n)
			} else {
				m.InitialIndex = uint32(n)
			}
		default:
			return m, fmt.Errorf("accounts: unknown key %q", key)
		}
	}
	if m.Phrase == "" {
		return m, fmt.Errorf("accounts: mnemonic table requires a mnemonic")
	}
	return m, nil
}

// loadEnvFiles loads .env and .env.local from the project root so that
// ${VAR} references in anchor.toml resolve.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadAnchorFile parses anchor.toml and expands environment variables in
// values that commonly hold secrets or endpoints.
func loadAnchorFile(path string) (*AnchorFile, error) {
	loadEnvFiles(filepath.Dir(path))

	var file AnchorFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for name, n := range file.Networks {
		n.RPCURL = os.ExpandEnv(n.RPCURL)
		file.Networks[name] = n
	}
	file.Deterministic.Registry = os.ExpandEnv(file.Deterministic.Registry)
	file.Compiler.SolcDir = os.ExpandEnv(file.Compiler.SolcDir)
	file.Project.Salt = os.ExpandEnv(file.Project.Salt)

	return &file, nil
}

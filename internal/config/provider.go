package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/domain/create2"
)

const (
	defaultArtifactsDir   = "out"
	defaultZkArtifactsDir = "zkout"
	defaultDataDir        = "deployments"
	defaultPollInterval   = 2 * time.Second
	defaultReceiptTimeout = 5 * time.Minute
	defaultMaxRetries     = 5
	defaultCompilerCache  = 4
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	configFile := filepath.Join(projectRoot, ConfigFileName)
	file, err := loadAnchorFile(configFile)
	if err != nil {
		return nil, err
	}

	salt, err := create2.ParseSalt(file.Project.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid project salt: %w", err)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ConfigFile:     configFile,
		DataDir:        resolvePath(projectRoot, v.GetString("data_dir"), defaultDataDir),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		Project: config.ProjectConfig{
			ArtifactsDir:   resolvePath(projectRoot, file.Project.Artifacts, defaultArtifactsDir),
			ZkArtifactsDir: resolvePath(projectRoot, file.Project.ZkArtifacts, defaultZkArtifactsDir),
			Contracts:      file.Project.Contracts,
			Salt:           salt,
		},
		Compiler: config.CompilerConfig{
			SolcDir:   file.Compiler.SolcDir,
			CacheSize: file.Compiler.CacheSize,
		},
	}
	if file.Deterministic.Registry != "" {
		cfg.Deterministic.RegistryFile = resolvePath(projectRoot, file.Deterministic.Registry, "")
	}
	if cfg.Compiler.CacheSize <= 0 {
		cfg.Compiler.CacheSize = defaultCompilerCache
	}
	if cfg.Compiler.SolcDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Compiler.SolcDir = filepath.Join(home, ".svm")
		}
	}
	if file.Accounts != nil {
		cfg.Accounts = file.Accounts.Accounts
	}

	networkName := v.GetString("network")
	if networkName == "" && len(file.Networks) == 1 {
		for name := range file.Networks {
			networkName = name
		}
	}
	if networkName != "" {
		section, ok := file.Networks[networkName]
		if !ok {
			return nil, fmt.Errorf("network '%s' not found in %s, available: %s",
				networkName, ConfigFileName, strings.Join(NetworkNames(file), ", "))
		}
		network, err := resolveNetwork(networkName, section)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
		if section.Accounts != nil {
			cfg.Accounts = section.Accounts.Accounts
		}
	}

	return cfg, nil
}

func resolveNetwork(name string, s NetworkSection) (*config.Network, error) {
	if s.RPCURL == "" {
		return nil, fmt.Errorf("rpc_url is required")
	}

	n := &config.Network{
		Name:           name,
		RPCURL:         s.RPCURL,
		ChainID:        s.ChainID,
		Dialect:        domain.Dialect(strings.ToLower(s.Dialect)),
		PollInterval:   defaultPollInterval,
		ReceiptTimeout: defaultReceiptTimeout,
		MaxRetries:     defaultMaxRetries,
		GasLimit:       s.GasLimit,
	}
	if n.Dialect == "" {
		n.Dialect = domain.DialectEVM
	}
	if !n.Dialect.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDialect, s.Dialect)
	}
	if s.MaxRetries != nil {
		n.MaxRetries = *s.MaxRetries
	}

	var err error
	if s.PollInterval != "" {
		if n.PollInterval, err = time.ParseDuration(s.PollInterval); err != nil {
			return nil, fmt.Errorf("invalid poll_interval: %w", err)
		}
	}
	if s.ReceiptTimeout != "" {
		if n.ReceiptTimeout, err = time.ParseDuration(s.ReceiptTimeout); err != nil {
			return nil, fmt.Errorf("invalid receipt_timeout: %w", err)
		}
	}
	return n, nil
}

// NetworkNames returns the configured network names in sorted order.
func NetworkNames(file *AnchorFile) []string {
	names := lo.Keys(file.Networks)
	slices.Sort(names)
	return names
}

func resolvePath(root, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(root, value)
}

// FindProjectRoot walks up from current directory to find anchor.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRootFrom(dir)
}

func findProjectRootFrom(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an anchor project (%s not found)", ConfigFileName)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("ANCHOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

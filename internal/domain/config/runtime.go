package config

import (
	"time"

	"github.com/trebuchet-org/anchor/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string
	ConfigFile  string

	// Target chain, nil if no network was selected
	Network *Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration

	Project       ProjectConfig
	Accounts      Accounts
	Deterministic DeterministicConfig
	Compiler      CompilerConfig
}

// ProjectConfig describes what gets deployed.
type ProjectConfig struct {
	ArtifactsDir   string
	ZkArtifactsDir string
	Contracts      []string
	Salt           domain.Salt
}

// ArtifactsDirFor returns the artifact directory holding output for the dialect.
func (p ProjectConfig) ArtifactsDirFor(d domain.Dialect) string {
	if d == domain.DialectZkSync {
		return p.ZkArtifactsDir
	}
	return p.ArtifactsDir
}

// Network represents network configuration
type Network struct {
	Name   string
	RPCURL string
	// ChainID is the expected chain id. Zero disables the check.
	ChainID        uint64
	Dialect        domain.Dialect
	PollInterval   time.Duration
	ReceiptTimeout time.Duration
	MaxRetries     uint64
	GasLimit       uint64
}

// DeterministicConfig points at an operator maintained list of factory
// deployment entries merged over the built-in registry.
type DeterministicConfig struct {
	RegistryFile string
}

type CompilerConfig struct {
	SolcDir   string
	CacheSize int
}

// Package compiler recompiles contracts with solc from their recorded
// metadata.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bytecode"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// ErrCompilerNotInstalled is returned when no solc binary exists for a version.
var ErrCompilerNotInstalled = errors.New("compiler not installed")

// Solc is one solc binary.
type Solc struct {
	Version string
	Path    string
}

// Compile runs solc in standard JSON mode.
func (s *Solc) Compile(ctx context.Context, input *StandardInput) (*StandardOutput, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode compiler input: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, "--standard-json")
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("solc %s failed: %w\nOutput: %s", s.Version, err, stderr.String())
	}

	var out StandardOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse solc %s output: %w", s.Version, err)
	}
	return &out, nil
}

// BinaryLoader finds solc binaries installed in the svm layout
// <dir>/<version>/solc-<version> and checks they report the expected version.
func BinaryLoader(dir string) LoadFunc {
	return func(version string) (*Solc, error) {
		path := filepath.Join(dir, version, "solc-"+version)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: solc %s not found at %s", ErrCompilerNotInstalled, version, path)
		}
		out, err := exec.Command(path, "--version").Output()
		if err != nil {
			return nil, fmt.Errorf("failed to run %s: %w", path, err)
		}
		if !strings.Contains(string(out), version) {
			return nil, fmt.Errorf("%s does not report version %s", path, version)
		}
		return &Solc{Version: version, Path: path}, nil
	}
}

// NormalizeVersion strips the commit suffix solc metadata carries, so
// 0.8.24+commit.e11b9ed9 becomes 0.8.24.
func NormalizeVersion(v string) string {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "+-"); i >= 0 {
		v = v[:i]
	}
	return v
}

// Service recompiles the runtime code of recorded contracts.
type Service struct {
	cache *Cache
	log   *slog.Logger
}

func NewService(cache *Cache, log *slog.Logger) *Service {
	return &Service{cache: cache, log: log.With("component", "Compiler")}
}

// ProvideService creates the compiler service for Wire dependency injection
func ProvideService(cfg *config.RuntimeConfig, log *slog.Logger) (*Service, error) {
	cache, err := NewCache(cfg.Compiler.CacheSize, BinaryLoader(cfg.Compiler.SolcDir))
	if err != nil {
		return nil, err
	}
	return NewService(cache, log), nil
}

func (s *Service) CompileDeployed(ctx context.Context, meta domain.CompilerMetadata) (*usecase.CompiledCode, error) {
	input, target, err := BuildInput(meta)
	if err != nil {
		return nil, err
	}
	version := NormalizeVersion(meta.CompilerVersion)
	if version == "" {
		return nil, fmt.Errorf("metadata has no compiler version")
	}
	solc, err := s.cache.Get(version)
	if err != nil {
		return nil, err
	}

	s.log.Debug("compiling", "target", target.Path+":"+target.Name, "version", version, "sources", len(input.Sources))
	out, err := solc.Compile(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}

	contract, ok := out.Contracts[target.Path][target.Name]
	if !ok {
		return nil, fmt.Errorf("solc output has no contract %s:%s", target.Path, target.Name)
	}
	object := strings.TrimPrefix(contract.EVM.DeployedBytecode.Object, "0x")
	code, err := hexutil.Decode("0x" + object)
	if err != nil {
		return nil, fmt.Errorf("invalid deployed bytecode in solc output: %w", err)
	}
	return &usecase.CompiledCode{
		DeployedBytecode:    code,
		ImmutableReferences: bytecode.FlattenImmutables(contract.EVM.DeployedBytecode.ImmutableReferences),
	}, nil
}

var _ usecase.Compiler = (*Service)(nil)

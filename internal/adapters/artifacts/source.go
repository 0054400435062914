// Package artifacts reads compiled contracts from a forge output directory.
package artifacts

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

const (
	buildInfoDir   = "build-info"
	maxSuggestions = 3
)

// Source serves artifacts from a forge output directory such as out/ or
// zkout/. The directory is indexed on first use.
type Source struct {
	fs          afero.Fs
	projectRoot string
	dir         string
	log         *slog.Logger

	mu    sync.Mutex
	index map[string][]string // contract name -> artifact files
}

func NewSource(fs afero.Fs, projectRoot, dir string, log *slog.Logger) *Source {
	return &Source{
		fs:          fs,
		projectRoot: projectRoot,
		dir:         dir,
		log:         log.With("component", "ArtifactSource"),
	}
}

// ProvideSource creates the artifact source for the selected network's
// dialect for Wire dependency injection
func ProvideSource(cfg *config.RuntimeConfig, log *slog.Logger) *Source {
	dialect := domain.DialectEVM
	if cfg.Network != nil && cfg.Network.Dialect != "" {
		dialect = cfg.Network.Dialect
	}
	return NewSource(afero.NewOsFs(), cfg.ProjectRoot, cfg.Project.ArtifactsDirFor(dialect), log)
}

func (s *Source) ListContracts(ctx context.Context) ([]string, error) {
	index, err := s.load()
	if err != nil {
		return nil, err
	}
	names := lo.Keys(index)
	slices.Sort(names)
	return names, nil
}

// GetArtifact returns the artifact named name. A name of the form
// path/To.sol:Name selects between contracts sharing a name.
func (s *Source) GetArtifact(ctx context.Context, name string) (*domain.ContractArtifact, error) {
	index, err := s.load()
	if err != nil {
		return nil, err
	}

	sourcePath, contract := splitQualified(name)
	var found []*domain.ContractArtifact
	for _, file := range index[contract] {
		artifact, err := s.readArtifact(file, contract)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if artifact == nil {
			continue
		}
		if sourcePath != "" && artifact.Metadata.SourcePath != sourcePath {
			continue
		}
		found = append(found, artifact)
	}

	switch len(found) {
	case 0:
		return nil, domain.ContractNotFoundError{Name: name, Suggestions: suggest(contract, lo.Keys(index))}
	case 1:
		s.loadSources(&found[0].Metadata)
		return found[0], nil
	default:
		paths := lo.Map(found, func(a *domain.ContractArtifact, _ int) string {
			return a.Metadata.SourcePath + ":" + contract
		})
		return nil, fmt.Errorf("contract name %s is ambiguous, use one of: %s", contract, strings.Join(paths, ", "))
	}
}

func splitQualified(name string) (string, string) {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (s *Source) load() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}

	if _, err := s.fs.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("artifact directory %s not found, build the project first: %w", s.dir, err)
	}

	index := make(map[string][]string)
	err := afero.Walk(s.fs, s.dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == buildInfoDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		name := contractName(info.Name())
		index[name] = append(index[name], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", s.dir, err)
	}

	s.log.Debug("indexed artifacts", "dir", s.dir, "contracts", len(index))
	s.index = index
	return index, nil
}

// contractName strips the extension and the compiler version suffix forge
// adds when a contract is built with several compilers (Name.0.8.24.json).
func contractName(file string) string {
	name := strings.TrimSuffix(file, ".json")
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

func (s *Source) readArtifact(path, name string) (*domain.ContractArtifact, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	return parseArtifact(name, data)
}

// loadSources fills in source content missing from the metadata from the
// project tree. Sources that can't be read are left empty.
func (s *Source) loadSources(meta *domain.CompilerMetadata) {
	for path, src := range meta.Sources {
		if src == nil {
			src = &domain.Source{}
			meta.Sources[path] = src
		}
		if src.Content != "" {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.projectRoot, path))
		if err != nil {
			s.log.Debug("source not readable", "path", path, "error", err)
			continue
		}
		src.Content = string(data)
	}
}

func suggest(name string, candidates []string) []string {
	slices.Sort(candidates)
	matches := fuzzy.Find(name, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
}

var _ usecase.ArtifactSource = (*Source)(nil)

package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

// ErrChainLocked is returned when another run holds the lock of a chain.
var ErrChainLocked = errors.New("record set is locked by another run")

// FileStore stores one JSON file per chain, mapping contract name to record.
// encoding/json sorts map keys, so files stay diffable across runs.
type FileStore struct {
	fs      afero.Fs
	dir     string
	lockDir string
	mu      sync.RWMutex
	log     *slog.Logger
}

// Option configures a FileStore
type Option func(*FileStore)

// WithLockDir places lock files outside the record directory. Locks always
// live on the operating system filesystem.
func WithLockDir(dir string) Option {
	return func(s *FileStore) { s.lockDir = dir }
}

// NewFileStore creates a record store rooted at dir on fs.
func NewFileStore(fs afero.Fs, dir string, log *slog.Logger, opts ...Option) *FileStore {
	s := &FileStore{
		fs:      fs,
		dir:     dir,
		lockDir: dir,
		log:     log.With("component", "RecordStore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProvideFileStore creates the record store for Wire dependency injection
func ProvideFileStore(cfg *config.RuntimeConfig, log *slog.Logger) *FileStore {
	return NewFileStore(afero.NewOsFs(), cfg.DataDir, log)
}

func (s *FileStore) path(chainID uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(chainID, 10)+".json")
}

// Get returns the record of a contract, nil if the contract has none.
func (s *FileStore) Get(ctx context.Context, chainID uint64, name string) (*domain.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, err := s.load(chainID)
	if err != nil {
		return nil, err
	}
	return set[name], nil
}

// List returns every record of a chain.
func (s *FileStore) List(ctx context.Context, chainID uint64) (map[string]*domain.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(chainID)
}

// Save upserts the record of a contract.
func (s *FileStore) Save(ctx context.Context, chainID uint64, name string, record *domain.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(chainID)
	if err != nil {
		return err
	}
	set[name] = record
	if err := s.write(chainID, set); err != nil {
		return fmt.Errorf("failed to save record set of chain %d: %w", chainID, err)
	}
	s.log.Debug("record saved", "chain", chainID, "contract", name, "address", record.Address)
	return nil
}

// Reset deletes the record set of a chain.
func (s *FileStore) Reset(ctx context.Context, chainID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path(chainID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove record set of chain %d: %w", chainID, err)
	}
	return nil
}

// Lock takes an exclusive file lock for the record set of a chain. It fails
// fast with ErrChainLocked instead of waiting.
func (s *FileStore) Lock(ctx context.Context, chainID uint64) (func() error, error) {
	if err := os.MkdirAll(s.lockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	l := flock.New(filepath.Join(s.lockDir, "."+strconv.FormatUint(chainID, 10)+".lock"))
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock record set of chain %d: %w", chainID, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: chain %d", ErrChainLocked, chainID)
	}
	return l.Unlock, nil
}

func (s *FileStore) load(chainID uint64) (map[string]*domain.DeploymentRecord, error) {
	set := make(map[string]*domain.DeploymentRecord)

	data, err := afero.ReadFile(s.fs, s.path(chainID))
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record set of chain %d: %w", chainID, err)
	}
	if len(data) == 0 {
		return set, nil
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path(chainID), err)
	}
	return set, nil
}

func (s *FileStore) write(chainID uint64, set map[string]*domain.DeploymentRecord) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	path := s.path(chainID)
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return s.fs.Rename(tmpPath, path)
}

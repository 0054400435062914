package compiler

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LoadFunc locates and checks the compiler for a version.
type LoadFunc func(version string) (*Solc, error)

// Cache keeps loaded compilers by version. Get loads a version on first use;
// the least recently used compiler is dropped once size is exceeded.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *Solc]
	load    LoadFunc
}

func NewCache(size int, load LoadFunc) (*Cache, error) {
	entries, err := lru.New[string, *Solc](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler cache: %w", err)
	}
	return &Cache{entries: entries, load: load}, nil
}

func (c *Cache) Get(version string) (*Solc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if solc, ok := c.entries.Get(version); ok {
		return solc, nil
	}
	solc, err := c.load(version)
	if err != nil {
		return nil, err
	}
	c.entries.Add(version, solc)
	return solc, nil
}

// Len returns the number of cached compilers.
func (c *Cache) Len() int {
	return c.entries.Len()
}

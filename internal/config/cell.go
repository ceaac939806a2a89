package config

import (
	"sync"
	"sync/atomic"
)

// Cell holds the current Configuration and swaps it wholesale on reload.
// Readers never block; reloads are serialized.
type Cell struct {
	path    string
	current atomic.Pointer[Configuration]
	mu      sync.Mutex
}

// NewCell creates a cell for the configuration file at path holding cfg.
func NewCell(path string, cfg *Configuration) *Cell {
	c := &Cell{path: ExpandPath(path)}
	c.current.Store(cfg)
	return c
}

// OpenCell loads the configuration at path and wraps it in a Cell.
func OpenCell(path string) (*Cell, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewCell(path, cfg), nil
}

// Path returns the absolute path of the backing file.
func (c *Cell) Path() string {
	return c.path
}

// Load returns the current configuration snapshot.
func (c *Cell) Load() *Configuration {
	return c.current.Load()
}

// Roots returns the resolved directories of the current configuration.
func (c *Cell) Roots() []string {
	cfg := c.Load()
	if cfg == nil {
		return nil
	}
	return cfg.Cheatsheets.Dirs()
}

// Reload re-reads the backing file. On failure the previous configuration is
// kept and the error returned.
func (c *Cell) Reload() (*Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := Load(c.path)
	if err != nil {
		return nil, err
	}
	c.current.Store(cfg)
	return cfg, nil
}

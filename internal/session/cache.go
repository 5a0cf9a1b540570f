// Package session keeps the resolved profile and configuration of the last successful
// first run so later regenerations can skip extraction and fetch.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/jonathan/postsmith/internal/types"
)

// Entry is the cached pair for one mode.
type Entry struct {
	Profile  types.Profile          `json:"profile"`
	Config   types.GenerationConfig `json:"config"`
	StoredAt time.Time              `json:"stored_at"`
}

// Cache holds one Entry per mode. Entries are stored and returned by value.
type Cache struct {
	mu      sync.RWMutex
	entries map[types.Mode]Entry
	now     func() time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[types.Mode]Entry), now: time.Now}
}

// Store overwrites the entry for mode.
func (c *Cache) Store(mode types.Mode, profile types.Profile, cfg types.GenerationConfig) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry{Profile: profile, Config: cfg, StoredAt: c.now()}
	c.entries[mode] = e
	return e
}

// Load returns the entry for mode.
func (c *Cache) Load(mode types.Mode) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[mode]
	return e, ok
}

// Modes returns the modes that have an entry, sorted.
func (c *Cache) Modes() []types.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()

	modes := make([]types.Mode, 0, len(c.entries))
	for m := range c.entries {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[types.Mode]Entry)
}

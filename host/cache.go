package host

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
)

// codeEntry is one stored contract: the original blob plus its compiled
// form.
type codeEntry struct {
	wasm     []byte
	compiled wazero.CompiledModule
	pinned   bool
	hits     uint64
}

// codeCache indexes stored code by checksum. Compiled modules stay resident
// until removed; pinning only protects an entry from removal.
type codeCache struct {
	mu      sync.RWMutex
	entries map[entities.Checksum]*codeEntry
}

func newCodeCache() *codeCache {
	return &codeCache{entries: make(map[entities.Checksum]*codeEntry)}
}

func (c *codeCache) save(checksum entities.Checksum, wasm []byte, compiled wazero.CompiledModule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[checksum]; ok {
		// compiled from identical bytes, keep the resident one
		compiled.Close(context.Background())
		return
	}
	c.entries[checksum] = &codeEntry{wasm: wasm, compiled: compiled}
}

func (c *codeCache) has(checksum entities.Checksum) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[checksum]
	return ok
}

// get returns the entry for execution and counts the hit.
func (c *codeCache) get(checksum entities.Checksum) (*codeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[checksum]
	if !ok {
		return nil, errors.NotFound("contract code for checksum %s", checksum)
	}
	entry.hits++
	return entry, nil
}

func (c *codeCache) wasm(checksum entities.Checksum) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[checksum]
	if !ok {
		return nil, errors.NotFound("contract code for checksum %s", checksum)
	}
	out := make([]byte, len(entry.wasm))
	copy(out, entry.wasm)
	return out, nil
}

func (c *codeCache) pin(checksum entities.Checksum, pinned bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[checksum]
	if !ok {
		return errors.NotFound("contract code for checksum %s", checksum)
	}
	entry.pinned = pinned
	return nil
}

func (c *codeCache) remove(ctx context.Context, checksum entities.Checksum) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[checksum]
	if !ok {
		return errors.NotFound("contract code for checksum %s", checksum)
	}
	if entry.pinned {
		return errors.Unauthorized("remove pinned contract code %s", checksum)
	}
	delete(c.entries, checksum)
	return entry.compiled.Close(ctx)
}

// CacheStats is a point-in-time view of the code cache.
type CacheStats struct {
	Codes  int
	Pinned int
	Hits   uint64
}

func (c *codeCache) stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var s CacheStats
	s.Codes = len(c.entries)
	for _, entry := range c.entries {
		if entry.pinned {
			s.Pinned++
		}
		s.Hits += entry.hits
	}
	return s
}

func (c *codeCache) close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for checksum, entry := range c.entries {
		if err := entry.compiled.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.entries, checksum)
	}
	return firstErr
}

package api

import (
	"context"
	"sync"
	"time"
)

// StoredResult is a converted bundle waiting to be downloaded.
type StoredResult struct {
	FileName  string
	Data      []byte
	ExpiresAt time.Time
}

// ResultCache holds output archives keyed by request ID until they expire.
// Each conversion owns its entry; nothing is shared between requests.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]StoredResult
	now     func() time.Time
}

// NewResultCache creates a cache whose entries live for ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]StoredResult),
		now:     time.Now,
	}
}

// Put stores data under id and returns the expiry time.
func (c *ResultCache) Put(id, fileName string, data []byte) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	c.entries[id] = StoredResult{FileName: fileName, Data: data, ExpiresAt: expires}
	return expires
}

// Get returns the entry for id unless it is missing or expired.
func (c *ResultCache) Get(id string) (StoredResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return StoredResult{}, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		delete(c.entries, id)
		return StoredResult{}, false
	}
	return entry, true
}

// Sweep removes expired entries and returns how many were removed.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartJanitor sweeps the cache every interval until ctx is done.
func (c *ResultCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

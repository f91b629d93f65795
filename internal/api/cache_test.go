package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultCache_ExpiresEntries(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	cache := NewResultCache(time.Minute)
	cache.now = func() time.Time { return now }

	expires := cache.Put("a", "a.zip", []byte("data"))
	assert.Equal(t, now.Add(time.Minute), expires)

	entry, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a.zip", entry.FileName)

	now = now.Add(time.Minute)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestResultCache_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	cache := NewResultCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put("old", "old.zip", nil)
	now = now.Add(30 * time.Second)
	cache.Put("new", "new.zip", nil)
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("new")
	assert.True(t, ok)
}

func TestResultCache_DefaultTTL(t *testing.T) {
	cache := NewResultCache(0)
	assert.Equal(t, 15*time.Minute, cache.ttl)
}

func TestResultCache_JanitorStopsWithContext(t *testing.T) {
	cache := NewResultCache(time.Millisecond)
	cache.Put("x", "x.zip", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

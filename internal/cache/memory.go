package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	b   []byte
	exp time.Time
}

// MemoryCache is an in-process TTL cache used when Redis is not
// configured. Values round-trip through JSON so both implementations
// behave identically.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{data: make(map[string]entry), ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = entry{b: b, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

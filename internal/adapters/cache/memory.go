package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	price    float64
	storedAt time.Time
}

// MemoryCache is the in-process fallback used when Redis is
// unreachable. Same advisory semantics, same TTL behavior.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryCache) SetPrice(ctx context.Context, symbol string, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[symbol] = memoryEntry{price: price, storedAt: m.now()}
	return nil
}

func (m *MemoryCache) GetPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.RLock()
	entry, ok := m.entries[symbol]
	m.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("no cached price for %s", symbol)
	}
	if m.now().Sub(entry.storedAt) > m.ttl {
		m.mu.Lock()
		delete(m.entries, symbol)
		m.mu.Unlock()
		return 0, fmt.Errorf("cached price for %s expired", symbol)
	}
	return entry.price, nil
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return nil
}
